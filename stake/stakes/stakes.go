// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import "math/big"

// WeightScale is the fixed-point scale carried by weighted amounts. Tier
// multipliers are expressed in hundredths, so a weighted amount is
// raw * multiplier and stays at the x100 scale through every aggregate sum.
// The scale cancels in the proportional share division (weighted over total
// weighted); it is never divided out early, so no precision is lost before
// the single flooring step.
const WeightScale = 100

// Weighted converts a raw amount into its duration-weighted form.
func Weighted(amount *big.Int, multiplier uint32) *big.Int {
	return new(big.Int).Mul(amount, big.NewInt(int64(multiplier)))
}

// Raw converts a weighted amount back into raw units, flooring.
func Raw(weighted *big.Int, multiplier uint32) *big.Int {
	return new(big.Int).Quo(weighted, big.NewInt(int64(multiplier)))
}

// Share computes the proportional reward share
//
//	floor(weighted * budget / totalWeighted)
//
// weighted and totalWeighted carry the same scale, so the result is in the
// budget's raw units. A zero totalWeighted yields a zero share.
func Share(weighted, budget, totalWeighted *big.Int) *big.Int {
	if totalWeighted.Sign() == 0 {
		return new(big.Int)
	}
	share := new(big.Int).Mul(weighted, budget)
	return share.Quo(share, totalWeighted)
}

// WeightedStake pairs a raw amount with its weighted form.
type WeightedStake struct {
	Raw      *big.Int
	Weighted *big.Int
}

// New creates a WeightedStake from a raw amount and a tier multiplier.
func New(raw *big.Int, multiplier uint32) *WeightedStake {
	return &WeightedStake{
		Raw:      new(big.Int).Set(raw),
		Weighted: Weighted(raw, multiplier),
	}
}

// Zero creates an empty WeightedStake.
func Zero() *WeightedStake {
	return &WeightedStake{Raw: new(big.Int), Weighted: new(big.Int)}
}

// Add sets s to the sum of itself and other.
func (s *WeightedStake) Add(other *WeightedStake) *WeightedStake {
	if other == nil {
		return s
	}
	s.Raw.Add(s.Raw, other.Raw)
	s.Weighted.Add(s.Weighted, other.Weighted)
	return s
}

// Sub sets s to the difference of itself and other.
func (s *WeightedStake) Sub(other *WeightedStake) *WeightedStake {
	if other == nil {
		return s
	}
	s.Raw.Sub(s.Raw, other.Raw)
	s.Weighted.Sub(s.Weighted, other.Weighted)
	return s
}

package ledger

import (
	"fmt"

	"github.com/saurabhvishwakarma419/Tokenized-Real-Estate-Investment/internal/models"
)

const (
	// DefaultFeeBps is the platform fee applied when none is configured (2.5%).
	DefaultFeeBps int64 = 250
	// BpsDenominator is 100% in basis points.
	BpsDenominator int64 = 10000
)

// SplitFee divides amount into the platform fee and the net remainder.
// The fee is rounded down so that fee + net always equals amount.
func SplitFee(amount models.Amount, feeBps int64) (fee, net models.Amount, err error) {
	if feeBps < 0 || feeBps > BpsDenominator {
		return models.Amount{}, models.Amount{}, fmt.Errorf("%w: fee %d bps out of range", ErrInvalidConfiguration, feeBps)
	}
	if amount.Overflows() {
		return models.Amount{}, models.Amount{}, fmt.Errorf("%w: amount %s exceeds representable range", ErrArithmetic, amount)
	}

	scaled := amount.MulInt(feeBps)
	if scaled.Overflows() {
		return models.Amount{}, models.Amount{}, fmt.Errorf("%w: fee computation on %s", ErrArithmetic, amount)
	}

	fee = scaled.QuoInt(BpsDenominator)
	net = amount.Sub(fee)
	return fee, net, nil
}

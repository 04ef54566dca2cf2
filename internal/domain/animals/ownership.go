package animals

import (
	"fmt"
	"math"
	"strconv"
)

// ValidateOwnerShares exige una lista no vacía de shares que sume exactamente
// 100. La suma se hace en centésimos enteros (precisión de dos decimales),
// así 33.34+33.33+33.33 pasa y el drift de float no produce falsos rechazos.
func ValidateOwnerShares(shares []OwnerShare) error {
	if len(shares) == 0 {
		return fmt.Errorf("%w: animal requires at least one owner", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(shares))
	total := 0 // centésimos de punto porcentual

	for _, s := range shares {
		if s.OwnerID == "" {
			return fmt.Errorf("%w: owner id required on every share", ErrInvalidInput)
		}
		if _, dup := seen[s.OwnerID]; dup {
			return fmt.Errorf("%w: owner %s listed more than once", ErrInvalidInput, s.OwnerID)
		}
		seen[s.OwnerID] = struct{}{}

		if s.SharePercent <= 0 || s.SharePercent > 100 {
			return fmt.Errorf("%w: share percent %s out of range (0, 100]", ErrInvalidInput, formatShare(s.SharePercent))
		}
		total += int(math.Round(s.SharePercent * 100))
	}

	if total != 10000 {
		return fmt.Errorf("%w: ownership shares total %s, must equal 100", ErrInvalidInput, formatShare(float64(total)/100))
	}
	return nil
}

func formatShare(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

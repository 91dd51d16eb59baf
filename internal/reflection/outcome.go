package reflection

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/dustin/go-humanize"
)

// Outcome is the realized result of a decision.
type Outcome struct {
	Returns     float64
	Description string
}

// FormatDollars renders v as $1,250.00.
func FormatDollars(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// FormatResult is FormatDollars, or "Break-even" for zero.
func FormatResult(v float64) string {
	if v == 0 {
		return "Break-even"
	}
	return FormatDollars(v)
}

// Describe builds the default outcome description from the sign of returns.
func Describe(returns float64) string {
	if returns > 0 {
		return fmt.Sprintf("Stock moved favorably, generating %s profit", FormatDollars(returns))
	}
	return fmt.Sprintf("Stock moved unfavorably, resulting in %s loss", FormatDollars(math.Abs(returns)))
}

// Simulate fills in whatever the caller did not supply: a return drawn uniformly from
// [-1000, 2000) and a description derived from its sign.
func Simulate(rng *rand.Rand, returns *float64, description string) Outcome {
	var r float64
	if returns != nil {
		r = *returns
	} else {
		r = -1000 + rng.Float64()*3000
	}
	if description == "" {
		description = Describe(r)
	}
	return Outcome{Returns: r, Description: description}
}

package filter

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"potterdex/internal/character/models"
)

// TestProperty_ResolveRoundTrip checks that any non-negative code written into
// a filter path resolves back to the same code.
func TestProperty_ResolveRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("filtroN resolves to N", prop.ForAll(
		func(n int) bool {
			got, err := Resolve("/filtro" + strconv.Itoa(n))
			return err == nil && got == Code(n)
		},
		gen.IntRange(0, 1_000_000),
	))

	properties.Property("paths without digits never resolve", prop.ForAll(
		func(suffix string) bool {
			_, err := Resolve("/filtro" + suffix)
			return err == ErrNoFilterCode
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

// TestProperty_UnknownCodesMatchEverything checks that codes outside 1..4 never
// exclude a record, whatever its attributes.
func TestProperty_UnknownCodesMatchEverything(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("unknown code matches any record", prop.ForAll(
		func(code int, species string, year int, alive, student bool) bool {
			c := Code(code)
			if c.Known() {
				return true
			}
			ch := models.Character{
				Species:         species,
				YearOfBirth:     &year,
				Alive:           alive,
				HogwartsStudent: student,
			}
			return c.Matches(ch) && len(c.Query()) == 0
		},
		gen.IntRange(-50, 50),
		gen.AlphaString(),
		gen.IntRange(1900, 2000),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

// Package filter resolves the numeric filter codes carried in /filtroN paths
// into fixed predicates over the character schema.
package filter

import (
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"

	"potterdex/internal/character/models"
	dErrors "potterdex/pkg/domain-errors"
)

// Code selects one of the fixed predicates. Values outside 1..4 match everything.
type Code int

const (
	CodeAll           Code = 0
	CodeHuman         Code = 1
	CodeBornBefore    Code = 2
	CodeHollyWand     Code = 3
	CodeAliveStudents Code = 4
)

// BirthYearCutoff is the exclusive upper bound used by CodeBornBefore.
const BirthYearCutoff = 1979

// ErrNoFilterCode is returned when a filter path carries no digits.
var ErrNoFilterCode = dErrors.New(dErrors.CodeBadRequest, "la ruta de filtro no contiene un número")

var digits = regexp.MustCompile(`\d+`)

// Resolve extracts the first run of digits from path. A run too large for an
// int is still a code, just not one of the known ones.
func Resolve(path string) (Code, error) {
	match := digits.FindString(path)
	if match == "" {
		return CodeAll, ErrNoFilterCode
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return CodeAll, nil
	}
	return Code(n), nil
}

// Known reports whether c selects one of the four fixed predicates.
func (c Code) Known() bool {
	return c >= CodeHuman && c <= CodeAliveStudents
}

// Query returns the MongoDB predicate for c.
func (c Code) Query() bson.D {
	switch c {
	case CodeHuman:
		return bson.D{{Key: "species", Value: "human"}}
	case CodeBornBefore:
		return bson.D{{Key: "yearOfBirth", Value: bson.D{{Key: "$lt", Value: BirthYearCutoff}}}}
	case CodeHollyWand:
		return bson.D{{Key: "wand.wood", Value: "holly"}}
	case CodeAliveStudents:
		return bson.D{{Key: "alive", Value: true}, {Key: "hogwartsStudent", Value: true}}
	default:
		return bson.D{}
	}
}

// Matches evaluates the same predicate as Query against a decoded record.
func (c Code) Matches(ch models.Character) bool {
	switch c {
	case CodeHuman:
		return ch.Species == "human"
	case CodeBornBefore:
		return ch.YearOfBirth != nil && *ch.YearOfBirth < BirthYearCutoff
	case CodeHollyWand:
		return ch.Wand != nil && ch.Wand.Wood == "holly"
	case CodeAliveStudents:
		return ch.Alive && ch.HogwartsStudent
	default:
		return true
	}
}

// Label is the heading shown above a filtered listing.
func (c Code) Label() string {
	switch c {
	case CodeHuman:
		return "Humanos"
	case CodeBornBefore:
		return "Nacidos antes de 1979"
	case CodeHollyWand:
		return "Varita de acebo"
	case CodeAliveStudents:
		return "Estudiantes vivos de Hogwarts"
	default:
		return "Todos"
	}
}

package models

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Character is one stored record. The seed schema is authoritative: every
// known attribute has a typed field, anything else rides along in Extra.
// Decoding is lenient (see UnmarshalBSON): a known attribute whose value does
// not fit its field is left out rather than failing the read.
type Character struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name,omitempty"`
	Species         string             `bson:"species,omitempty"`
	Gender          string             `bson:"gender,omitempty"`
	House           string             `bson:"house,omitempty"`
	YearOfBirth     *int               `bson:"yearOfBirth,omitempty"`
	Wand            *Wand              `bson:"wand,omitempty"`
	Alive           bool               `bson:"alive"`
	HogwartsStudent bool               `bson:"hogwartsStudent"`
	Image           string             `bson:"image,omitempty"`
	Extra           bson.M             `bson:",inline"`
}

// Wand is the nested wand attribute of a character. Length is kept untyped
// in Extra because seed files mix numbers, empty strings and nulls for it.
type Wand struct {
	Wood  string `bson:"wood,omitempty"`
	Core  string `bson:"core,omitempty"`
	Extra bson.M `bson:",inline"`
}

// IDHex returns the hex form used in delete links, or "" for unsaved records.
func (c Character) IDHex() string {
	if c.ID.IsZero() {
		return ""
	}
	return c.ID.Hex()
}

// BirthYear renders YearOfBirth for display; absent years render empty.
func (c Character) BirthYear() string {
	if c.YearOfBirth == nil {
		return ""
	}
	return strconv.Itoa(*c.YearOfBirth)
}

// Insert form field names. They are part of the public HTML contract and
// differ from the stored schema.
const (
	FormName        = "nombre"
	FormSpecies     = "especie"
	FormGender      = "genero"
	FormHouse       = "casa"
	FormYearOfBirth = "anoNacimiento"
)

// CharacterForm is the typed shape of a POST /insertar submission.
type CharacterForm struct {
	Name        string
	Species     string
	Gender      string
	House       string
	YearOfBirth string
}

// NewCharacterForm reads the insert form fields from parsed form values.
func NewCharacterForm(values url.Values) CharacterForm {
	return CharacterForm{
		Name:        strings.TrimSpace(values.Get(FormName)),
		Species:     strings.TrimSpace(values.Get(FormSpecies)),
		Gender:      strings.TrimSpace(values.Get(FormGender)),
		House:       strings.TrimSpace(values.Get(FormHouse)),
		YearOfBirth: strings.TrimSpace(values.Get(FormYearOfBirth)),
	}
}

// ToCharacter maps the form onto the stored schema. A year that is not an
// integer is dropped rather than rejected.
func (f CharacterForm) ToCharacter() Character {
	c := Character{
		Name:    f.Name,
		Species: f.Species,
		Gender:  f.Gender,
		House:   f.House,
	}
	if year, err := strconv.Atoi(f.YearOfBirth); err == nil {
		c.YearOfBirth = &year
	}
	return c
}

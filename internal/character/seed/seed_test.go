package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `[
  {
    "name": "Harry Potter",
    "alternate_names": ["The Boy Who Lived"],
    "species": "human",
    "gender": "male",
    "house": "Gryffindor",
    "yearOfBirth": 1980,
    "wand": {"wood": "holly", "core": "phoenix tail feather", "length": 11},
    "hogwartsStudent": true,
    "alive": true,
    "image": "https://ik.imagekit.io/hpapi/harry.jpg"
  },
  {
    "name": "Kingsley Shacklebolt",
    "species": "human",
    "gender": "male",
    "house": "",
    "yearOfBirth": null,
    "wand": {"wood": "", "core": "", "length": null},
    "hogwartsStudent": false,
    "alive": true,
    "image": ""
  }
]`

func TestParse(t *testing.T) {
	records, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, records, 2)

	harry := records[0]
	assert.Equal(t, "Harry Potter", harry.Name)
	assert.Equal(t, "Gryffindor", harry.House)
	require.NotNil(t, harry.YearOfBirth)
	assert.Equal(t, 1980, *harry.YearOfBirth)
	require.NotNil(t, harry.Wand)
	assert.Equal(t, "holly", harry.Wand.Wood)
	assert.EqualValues(t, 11, harry.Wand.Extra["length"])
	assert.True(t, harry.Alive)
	assert.True(t, harry.HogwartsStudent)
	assert.True(t, harry.ID.IsZero(), "seed records carry no store id")

	alt, ok := harry.Extra["alternate_names"]
	require.True(t, ok, "unknown attributes are preserved")
	assert.NotNil(t, alt)

	kingsley := records[1]
	assert.Nil(t, kingsley.YearOfBirth, "null year decodes as absent")
	require.NotNil(t, kingsley.Wand)
	assert.Nil(t, kingsley.Wand.Extra["length"])
}

func TestParseAcceptsUntypedWandLength(t *testing.T) {
	records, err := Parse(strings.NewReader(`[{"name": "Hedwig", "wand": {"wood": "", "core": "", "length": ""}}]`))
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Wand)
	assert.Equal(t, "", records[0].Wand.Extra["length"])
}

func TestParseEmptyArray(t *testing.T) {
	records, err := Parse(strings.NewReader("[]"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseRejectsNonArray(t *testing.T) {
	_, err := Parse(strings.NewReader(`{"name": "Harry"}`))
	require.Error(t, err)
}

func TestParseReportsBadRecord(t *testing.T) {
	_, err := Parse(strings.NewReader(`[{"name": "ok"}, {"yearOfBirth": {"$numberInt": "nineteen"}}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
}

func TestParseToleratesMistypedAttributes(t *testing.T) {
	const hexID = "5f1d7f3b9d1e8a0b1c2d3e4f"
	records, err := Parse(strings.NewReader(`[
  {"_id": "` + hexID + `", "name": "Harry Potter", "yearOfBirth": "1980"},
  {"_id": "harry-2", "name": "Nearly Headless Nick", "yearOfBirth": "c. 1450s", "alive": "no"},
  {"_id": 7, "name": 42, "house": "Gryffindor", "yearOfBirth": 1925.0, "wand": "broken"}
]`))
	require.NoError(t, err)
	require.Len(t, records, 3)

	harry := records[0]
	assert.Equal(t, hexID, harry.IDHex(), "hex string ids become ObjectIDs")
	require.NotNil(t, harry.YearOfBirth)
	assert.Equal(t, 1980, *harry.YearOfBirth)

	nick := records[1]
	assert.True(t, nick.ID.IsZero(), "non ObjectID ids are left for the store to assign")
	assert.Nil(t, nick.YearOfBirth)
	assert.False(t, nick.Alive)
	assert.Equal(t, "Nearly Headless Nick", nick.Name)

	third := records[2]
	assert.Empty(t, third.Name)
	assert.Equal(t, "Gryffindor", third.House)
	require.NotNil(t, third.YearOfBirth)
	assert.Equal(t, 1925, *third.YearOfBirth)
	assert.Nil(t, third.Wand)
}

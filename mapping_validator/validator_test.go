package mapping_validator

import (
	"testing"

	"github.com/fersoria001/clearly/metadata"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func mappings(objects ...*metadata.ObjectType) *metadata.Mappings {
	return &metadata.Mappings{Objects: objects}
}

func TestValidate(t *testing.T) {
	var data = map[string]struct {
		object *metadata.ObjectType
		valid  bool
	}{
		"valid": {
			object: &metadata.ObjectType{Name: "Customer", Pkg: "models", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
				{Field: "email", Column: "email"},
			}},
			valid: true,
		},
		"missingField": {
			object: &metadata.ObjectType{Name: "Customer", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
				{Field: "phone", Column: "phone"},
			}},
		},
		"missingMethods": {
			object: &metadata.ObjectType{Name: "Tag", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "label", Column: "label"},
			}},
		},
		"notStruct": {
			object: &metadata.ObjectType{Name: "Status", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
			}},
		},
		"unknownType": {
			object: &metadata.ObjectType{Name: "Order", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
			}},
		},
		"wrongPackage": {
			object: &metadata.ObjectType{Name: "Customer", Pkg: "shop", Dir: "testdata/models", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
			}},
		},
		"noDir": {
			object: &metadata.ObjectType{Name: "Customer", Fields: []metadata.Column{
				{Field: "id", Column: "id"},
			}},
		},
	}
	for name, v := range data {
		t.Run(name, func(t *testing.T) {
			err := Validate(".", mappings(v.object))
			if v.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestValidate_ReportsEveryMismatch(t *testing.T) {
	err := Validate(".", mappings(
		&metadata.ObjectType{Name: "Customer", Dir: "testdata/models", Fields: []metadata.Column{
			{Field: "id", Column: "id"},
			{Field: "phone", Column: "phone"},
		}},
		&metadata.ObjectType{Name: "Tag", Dir: "testdata/models", Fields: []metadata.Column{
			{Field: "label", Column: "label"},
		}},
	))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingField))
	require.True(t, errors.Is(err, ErrMissingMethod))
	require.Contains(t, err.Error(), "phone")
	require.Contains(t, err.Error(), "the type Tag has no method MarkLoaded")
}

package metadata

import (
	"os"

	mapset "github.com/deckarep/golang-set"
	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ObjectType is one entry of a mapping file.
type ObjectType struct {
	Name     string   `json:"name"`
	Table    string   `json:"table"`
	IdColumn string   `json:"idColumn"`
	Lazy     bool     `json:"lazy"`
	Fields   []Column `json:"fields"`
	Pkg      string   `json:"pkg"`
	Dir      string   `json:"dir"`
}

type Mappings struct {
	Objects []*ObjectType `json:"objects"`
}

func ReadMappings(path string) (*Mappings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "error reading mappings file")
	}
	return ParseMappings(data)
}

func ParseMappings(data []byte) (*Mappings, error) {
	var m Mappings
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "error decoding mappings")
	}
	if len(m.Objects) < 1 {
		return nil, errors.Errorf("the mappings must contain at least one object")
	}
	names := mapset.NewSet()
	for _, o := range m.Objects {
		if !names.Add(o.Name) {
			return nil, errors.Errorf("the object %s is mapped more than once", o.Name)
		}
		if err := o.Descriptor().Validate(); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

func (m *Mappings) Object(name string) (*ObjectType, bool) {
	for _, o := range m.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return nil, false
}

// Descriptor returns an unbound descriptor, use Bind to attach a Go type.
func (o *ObjectType) Descriptor() *EntityDescriptor {
	d := &EntityDescriptor{
		Name:     o.Name,
		Table:    o.Table,
		IdColumn: o.IdColumn,
		Columns:  append([]Column(nil), o.Fields...),
		Lazy:     o.Lazy,
	}
	if d.Table == "" && d.Name != "" {
		d.Table = TableName(d.Name)
	}
	if d.IdColumn == "" {
		d.IdColumn = "id"
	}
	return d
}

// Package mapping_validator checks a mapping file against the Go types it
// names, so a mapping can be rejected before any mapper is built from it.
package mapping_validator

import (
	stderrors "errors"
	"go/types"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set"
	"github.com/fersoria001/clearly/metadata"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/packages"
)

var (
	ErrMissingField  = errors.New("mapped field not found")
	ErrMissingMethod = errors.New("domain object method not found")
)

const loadMode = packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax

// Validate loads the package of every mapped object, relative to root, and
// reports every mismatch it finds.
func Validate(root string, mappings *metadata.Mappings) error {
	byDir := make(map[string][]*metadata.ObjectType)
	for _, o := range mappings.Objects {
		if o.Dir == "" {
			return errors.Errorf("the object %s has no dir", o.Name)
		}
		byDir[o.Dir] = append(byDir[o.Dir], o)
	}
	var errs []error
	for dir, objects := range byDir {
		pkg, err := loadPackage(root, dir)
		if err != nil {
			return err
		}
		for _, o := range objects {
			if o.Pkg != "" && o.Pkg != pkg.Name() {
				errs = append(errs, errors.Errorf("the object %s expects package %s, found %s in %s", o.Name, o.Pkg, pkg.Name(), dir))
				continue
			}
			errs = append(errs, validateObject(pkg, o)...)
		}
	}
	return stderrors.Join(errs...)
}

func loadPackage(root, dir string) (*types.Package, error) {
	cfg := &packages.Config{
		Mode: loadMode,
		Dir:  root,
	}
	pattern := "./" + filepath.ToSlash(filepath.Clean(dir))
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading package %s", dir)
	}
	if len(pkgs) != 1 {
		return nil, errors.Errorf("expected one package in %s, found %d", dir, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) > 0 {
		messages := make([]string, 0, len(pkg.Errors))
		for _, e := range pkg.Errors {
			messages = append(messages, e.Error())
		}
		return nil, errors.Errorf("package %s has errors: %s", dir, strings.Join(messages, "; "))
	}
	return pkg.Types, nil
}

// validateObject requires a struct with every mapped field, and the Id and
// Type methods on its pointer type.
func validateObject(pkg *types.Package, o *metadata.ObjectType) []error {
	obj := pkg.Scope().Lookup(o.Name)
	if obj == nil {
		return []error{errors.Errorf("could not find the object %s in %s", o.Name, pkg.Path())}
	}
	structType, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return []error{errors.Errorf("the object %s in %s is not a struct", o.Name, pkg.Path())}
	}
	present := mapset.NewSet()
	for i := 0; i < structType.NumFields(); i++ {
		present.Add(structType.Field(i).Name())
	}
	var errs []error
	for _, f := range o.Fields {
		if !present.Contains(f.Field) {
			errs = append(errs, errors.Wrapf(ErrMissingField, "the field %s is not present in type %s", f.Field, o.Name))
		}
	}
	mset := types.NewMethodSet(types.NewPointer(obj.Type()))
	for _, name := range []string{"Id", "Type", "IsGhost", "MarkLoading", "MarkLoaded"} {
		if mset.Lookup(pkg, name) == nil {
			errs = append(errs, errors.Wrapf(ErrMissingMethod, "the type %s has no method %s", o.Name, name))
		}
	}
	return errs
}

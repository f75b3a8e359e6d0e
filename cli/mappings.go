package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fersoria001/clearly/mapping_validator"
	"github.com/fersoria001/clearly/metadata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

const mappingsUsage = "mapping file, defaults to CLEARLY_MAPPINGS or mappings.json"

// mappingsFile is the --mappings flag when set, the configured path otherwise.
func (opts *rootOptions) mappingsFile(flag string) string {
	if flag != "" {
		return flag
	}
	return opts.cfg.MappingsPath
}

func NewCheckCmd(opts *rootOptions) *cobra.Command {
	var (
		mappingsPath string
		root         string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a mapping file against the Go types it maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.mappingsFile(mappingsPath)
			mappings, err := metadata.ReadMappings(path)
			if err != nil {
				return err
			}
			if root == "" {
				root = filepath.Dir(path)
			}
			opts.logger.WithField("objects", len(mappings.Objects)).Debug("checking mappings")
			if err := mapping_validator.Validate(root, mappings); err != nil {
				return errors.Wrapf(err, "%s does not match its types", path)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d objects ok\n", len(mappings.Objects))
			return nil
		},
	}
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", mappingsUsage)
	cmd.Flags().StringVar(&root, "root", "", "directory the object dirs are relative to, defaults to the mapping file dir")
	return cmd
}

func NewStatementsCmd(opts *rootOptions) *cobra.Command {
	var mappingsPath string
	cmd := &cobra.Command{
		Use:   "statements [object...]",
		Short: "Print the SQL statements derived from a mapping file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.mappingsFile(mappingsPath)
			mappings, err := metadata.ReadMappings(path)
			if err != nil {
				return err
			}
			objects := append([]*metadata.ObjectType(nil), mappings.Objects...)
			if len(args) > 0 {
				objects = objects[:0]
				for _, name := range args {
					o, ok := mappings.Object(name)
					if !ok {
						return errors.Errorf("the object %s is not in %s", name, path)
					}
					objects = append(objects, o)
				}
			}
			slices.SortFunc(objects, func(a, b *metadata.ObjectType) int {
				return strings.Compare(a.Name, b.Name)
			})
			out := cmd.OutOrStdout()
			for _, o := range objects {
				d := o.Descriptor()
				fmt.Fprintf(out, "-- %s\n", d)
				fmt.Fprintln(out, d.FindStatement())
				fmt.Fprintln(out, d.InsertStatement())
				fmt.Fprintln(out, d.UpdateStatement())
				fmt.Fprintln(out, d.RemoveStatement())
			}
			opts.logger.WithField("objects", len(objects)).Debug("statements printed")
			return nil
		},
	}
	cmd.Flags().StringVar(&mappingsPath, "mappings", "", mappingsUsage)
	return cmd
}

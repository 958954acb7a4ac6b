/*
Copyright © 2019 the news2roms authors.
This file is part of news2roms.

news2roms is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

news2roms is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with news2roms.  If not, see <http://www.gnu.org/licenses/>.
*/

package news2romsutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/BurntSushi/toml"
	"github.com/jonboulle/clockwork"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/news2roms"
	"github.com/spatialmodel/news2roms/news"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
type Cfg struct {
	*viper.Viper

	// Root is the main command.
	Root *cobra.Command

	versionCmd, buildCmd, riversCmd, configCmd *cobra.Command

	options []option

	// clock gives the time recorded in output files.
	clock clockwork.Clock

	log *logrus.Logger
}

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// InitializeConfig creates the command tree and its configuration.
func InitializeConfig() *Cfg {
	cfg := &Cfg{
		Viper: viper.New(),
		clock: clockwork.NewRealClock(),
		log:   logrus.New(),
	}

	cfg.Root = &cobra.Command{
		Use:   "news2roms",
		Short: "Map river nutrients onto an ocean model grid.",
		Long: `news2roms maps the river exports in the Global NEWS database onto the
rho points of a ROMS grid, spreading each river's nutrient concentrations
over the ocean cells near its mouth.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'NEWS2ROMS_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'. Environment
variables can also be set in a file given with the --EnvFile flag. Many
configuration variables are additionally allowed to contain environment
variables within them.`,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return cfg.setConfig() },
	}

	cfg.versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Long:  "version prints the version number of this version of news2roms.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "news2roms v%s\n", news2roms.Version)
		},
		DisableAutoGenTag: true,
	}

	cfg.buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build river nutrient fields",
		Long: `build assigns each river in the grid domain to its nearest ocean
cell, spreads its nutrient concentrations over the connected ocean cells
near its mouth, and saves the resulting fields to OutputFile. Rivers
are stamped in order of increasing discharge, so larger rivers take
precedence where plumes overlap.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.build(context.Background())
		},
		DisableAutoGenTag: true,
	}

	cfg.riversCmd = &cobra.Command{
		Use:   "rivers",
		Short: "List the rivers in the grid domain",
		Long: `rivers prints the rivers in the grid domain, in stamping order, along with
the grid cell each river mouth is assigned to.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.rivers(context.Background(), cmd)
		},
		DisableAutoGenTag: true,
	}

	cfg.configCmd = &cobra.Command{
		Use:   "config",
		Short: "Print the configuration",
		Long: `config prints the configuration that results from the configuration file,
environment variables and command-line arguments in TOML format. The
output can be used as a configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.printConfig(cmd)
		},
		DisableAutoGenTag: true,
	}

	cfg.Root.AddCommand(cfg.versionCmd, cfg.buildCmd, cfg.riversCmd, cfg.configCmd)

	// Options are the configuration options available to news2roms.
	domainFlags := []*pflag.FlagSet{cfg.buildCmd.Flags(), cfg.riversCmd.Flags()}
	cfg.options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "EnvFile",
			usage: `
              EnvFile specifies a file of environment variables to set
              before the configuration is read. Variables that are
              already set are not changed.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to print:
              debug, info, warning or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{cfg.Root.PersistentFlags()},
		},
		{
			name: "Grid.File",
			usage: `
              Grid.File is the location of the ROMS grid file. It can be a
              local path, a URL, or a blob storage location
              (gs://, s3://, or file://).`,
			shorthand:  "g",
			defaultVal: "",
			flagsets:   domainFlags,
		},
		{
			name: "Grid.LonVar",
			usage: `
              Grid.LonVar is the grid file variable holding the longitude
              of each cell [degrees].`,
			defaultVal: news2roms.RhoPoints.Lon,
			flagsets:   domainFlags,
		},
		{
			name: "Grid.LatVar",
			usage: `
              Grid.LatVar is the grid file variable holding the latitude
              of each cell [degrees].`,
			defaultVal: news2roms.RhoPoints.Lat,
			flagsets:   domainFlags,
		},
		{
			name: "Grid.MaskVar",
			usage: `
              Grid.MaskVar is the grid file variable holding the land/sea
              mask, which is 1 for ocean cells and 0 for land cells.`,
			defaultVal: news2roms.RhoPoints.Mask,
			flagsets:   domainFlags,
		},
		{
			name: "NEWS.Files",
			usage: `
              NEWS.Files is the location of the NEWS database: either a
              single Excel workbook or one CSV file for each of the
              basins, river exports and hydrology tables. Each can be a
              local path, a URL, or a blob storage location.`,
			shorthand:  "n",
			defaultVal: []string{},
			flagsets:   domainFlags,
		},
		{
			name: "NEWS.Sheets",
			usage: `
              NEWS.Sheets are the sheets to read when NEWS.Files is an
              Excel workbook.`,
			defaultVal: news.DefaultTables,
			flagsets:   domainFlags,
		},
		{
			name: "NEWS.MinDischarge",
			usage: `
              NEWS.MinDischarge is the discharge [m³/s] that rivers must
              exceed to be included.`,
			defaultVal: 10.0,
			flagsets:   domainFlags,
		},
		{
			name: "DerivedFields",
			usage: `
              DerivedFields are expressions for the fields that can be built,
              in terms of the NEWS table columns and the concentrations
              calculated from them (for example DIN_conc [mol m-3]).
              Expressions can refer to each other.`,
			defaultVal: news.DefaultDerived,
			flagsets:   domainFlags,
		},
		{
			name: "ProximityThreshold",
			usage: `
              ProximityThreshold is the greatest angular distance [radians]
              between a river mouth and the center of the ocean cell it
              is assigned to.`,
			defaultVal: news2roms.ProximityThreshold,
			flagsets:   domainFlags,
		},
		{
			name: "MouthShapefile",
			usage: `
              MouthShapefile, if set, is the location of a shapefile to write
              the river mouths and their assigned grid cells to.`,
			defaultVal: "",
			flagsets:   domainFlags,
		},
		{
			name: "Fields",
			usage: `
              Fields are the DerivedFields to build.`,
			shorthand:  "f",
			defaultVal: []string{"NO3_CONC"},
			flagsets:   []*pflag.FlagSet{cfg.buildCmd.Flags()},
		},
		{
			name: "SpreadRadius",
			usage: `
              SpreadRadius is the half-width of the window [grid cells]
              that each river can spread within.`,
			shorthand:  "r",
			defaultVal: news2roms.DefaultRadius,
			flagsets:   []*pflag.FlagSet{cfg.buildCmd.Flags()},
		},
		{
			name: "MaxGrowIterations",
			usage: `
              MaxGrowIterations is the maximum number of steps a river can
              spread outward from its mouth.`,
			defaultVal: news2roms.MaxGrowIterations,
			flagsets:   []*pflag.FlagSet{cfg.buildCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the netcdf file where the fields
              should be written. It can be a blob storage location.`,
			shorthand:  "o",
			defaultVal: "rivers_news.nc",
			flagsets:   []*pflag.FlagSet{cfg.buildCmd.Flags()},
		},
		{
			name: "MetricsFile",
			usage: `
              MetricsFile, if set, is the path to a file where statistics
              about the run should be written in the Prometheus text format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{cfg.buildCmd.Flags()},
		},
	}

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("NEWS2ROMS")
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	for _, option := range cfg.options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
	return cfg
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func (cfg *Cfg) setConfig() error {
	if err := loadEnvFile(cfg.GetString("EnvFile")); err != nil {
		return err
	}
	if cfgpath := cfg.GetString("config"); cfgpath != "" {
		cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("news2roms: problem reading configuration file: %v", err)
		}
	}
	log, err := newLogger(cfg.GetString("LogLevel"))
	if err != nil {
		return err
	}
	log.Out = cfg.Root.OutOrStderr()
	cfg.log = log
	return nil
}

// derivedFields returns the field expressions from the configuration.
func (cfg *Cfg) derivedFields() (map[string]string, error) {
	d, err := GetStringMapString("DerivedFields", cfg.Viper)
	if err != nil {
		return nil, err
	}
	return checkDerivedFields(d), nil
}

// loadRivers reads the grid and the NEWS database, and assigns the
// rivers in the grid domain to grid cells.
func (cfg *Cfg) loadRivers(ctx context.Context, derived map[string]string) (*news2roms.Grid, []news2roms.Assignment, error) {
	gridFile := os.ExpandEnv(cfg.GetString("Grid.File"))
	if gridFile == "" {
		return nil, nil, fmt.Errorf("you need to specify the grid file location in the " +
			"'Grid.File' configuration variable.")
	}
	gridFile, err := maybeDownload(ctx, gridFile, cfg.log)
	if err != nil {
		return nil, nil, err
	}
	g, err := LoadGrid(gridFile, news2roms.GridVariables{
		Lon:  cfg.GetString("Grid.LonVar"),
		Lat:  cfg.GetString("Grid.LatVar"),
		Mask: cfg.GetString("Grid.MaskVar"),
	})
	if err != nil {
		return nil, nil, err
	}

	files := expandStringSlice(cfg.GetStringSlice("NEWS.Files"))
	for i, f := range files {
		if files[i], err = maybeDownload(ctx, f, cfg.log); err != nil {
			return nil, nil, err
		}
	}
	t, err := LoadTable(files, cfg.GetStringSlice("NEWS.Sheets"))
	if err != nil {
		return nil, nil, err
	}
	rivers, err := SelectRivers(t, g, derived, cfg.GetFloat64("NEWS.MinDischarge"), cfg.log)
	if err != nil {
		return nil, nil, err
	}
	return g, ResolveRivers(g, rivers, cfg.GetFloat64("ProximityThreshold"), cfg.log), nil
}

// build runs the build command.
func (cfg *Cfg) build(ctx context.Context) error {
	start := cfg.clock.Now()
	outputFile, err := checkOutputFile(ctx, cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	derived, err := cfg.derivedFields()
	if err != nil {
		return err
	}
	fields, err := checkFields(cfg.GetStringSlice("Fields"), derived)
	if err != nil {
		return err
	}
	g, assignments, err := cfg.loadRivers(ctx, derived)
	if err != nil {
		return err
	}
	m := newMetrics()
	m.observeRivers(assignments)
	m.observeWarnings(news2roms.Unresolved(assignments))

	fs, warnings, err := Build(ctx, g, assignments, fields,
		cfg.GetInt("SpreadRadius"), cfg.GetInt("MaxGrowIterations"), cfg.log)
	if err != nil {
		return err
	}
	m.observeWarnings(warnings)

	u := new(uploader)
	out := u.maybeUpload(outputFile)
	mouths := os.ExpandEnv(cfg.GetString("MouthShapefile"))
	if mouths != "" {
		mouths = u.maybeUpload(mouths)
	}
	if u.err != nil {
		return fmt.Errorf("news2roms: preparing output upload: %v", u.err)
	}
	if err := WriteOutput(out, g, fs, history(cfg.clock)); err != nil {
		return err
	}
	if mouths != "" {
		if err := WriteMouths(mouths, assignments); err != nil {
			return err
		}
	}
	if err := u.uploadOutput(ctx); err != nil {
		return err
	}
	m.observeDuration(cfg.clock.Since(start))
	if mf := os.ExpandEnv(cfg.GetString("MetricsFile")); mf != "" {
		if err := m.write(mf); err != nil {
			return err
		}
	}
	cfg.log.WithFields(logrus.Fields{
		"file":     outputFile,
		"fields":   len(fs),
		"rivers":   len(assignments),
		"warnings": len(warnings),
	}).Info("wrote river fields")
	return nil
}

// rivers runs the rivers command.
func (cfg *Cfg) rivers(ctx context.Context, cmd *cobra.Command) error {
	derived, err := cfg.derivedFields()
	if err != nil {
		return err
	}
	_, assignments, err := cfg.loadRivers(ctx, derived)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "name\tdischarge\tlon\tlat\tj\ti\tdistance\tstatus")
	for _, a := range assignments {
		r := newMouthRecord(a)
		fmt.Fprintf(w, "%s\t%.4g\t%.4f\t%.4f\t%d\t%d\t%.3g\t%s\n",
			r.Name, r.Discharge, r.X, r.Y, r.J, r.I, r.Distance, r.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if mouths := os.ExpandEnv(cfg.GetString("MouthShapefile")); mouths != "" {
		u := new(uploader)
		if err := WriteMouths(u.maybeUpload(mouths), assignments); err != nil {
			return err
		}
		return u.uploadOutput(ctx)
	}
	return nil
}

// printConfig runs the config command.
func (cfg *Cfg) printConfig(cmd *cobra.Command) error {
	c := make(map[string]interface{})
	for _, option := range cfg.options {
		if option.name == "config" {
			continue
		}
		var v interface{}
		switch option.defaultVal.(type) {
		case []string:
			v = cfg.GetStringSlice(option.name)
		case map[string]string:
			m, err := GetStringMapString(option.name, cfg.Viper)
			if err != nil {
				return err
			}
			v = m
		case int:
			v = cfg.GetInt(option.name)
		case float64:
			v = cfg.GetFloat64(option.name)
		default:
			v = cfg.GetString(option.name)
		}
		// Nest dotted names in tables.
		parts := strings.Split(option.name, ".")
		m := c
		for _, p := range parts[:len(parts)-1] {
			sub, ok := m[p].(map[string]interface{})
			if !ok {
				sub = make(map[string]interface{})
				m[p] = sub
			}
			m = sub
		}
		m[parts[len(parts)-1]] = v
	}
	return toml.NewEncoder(cmd.OutOrStdout()).Encode(c)
}

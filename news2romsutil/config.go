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
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(ctx context.Context, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="rivers_news.nc")`)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		url, err := url.Parse(f)
		if err != nil {
			return f, err
		}
		_, err = OpenBucket(ctx, url.Scheme+"://"+url.Host)
		if err != nil {
			return f, fmt.Errorf("news2roms: error when checking output location: %v", err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("news2roms: the output file directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkFields makes sure that there are fields to build and that
// each of them is defined.
func checkFields(fields []string, derived map[string]string) ([]string, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("there are no fields specified for output. Please fill in " +
			"the Fields configuration and try again.")
	}
	for i, f := range fields {
		f = strings.TrimSpace(os.ExpandEnv(f))
		if _, ok := derived[f]; !ok {
			return nil, fmt.Errorf("news2roms: field %s is not defined in DerivedFields", f)
		}
		fields[i] = f
	}
	return fields, nil
}

// checkDerivedFields removes end lines and expands environment
// variables in the derived field expressions.
func checkDerivedFields(vars map[string]string) map[string]string {
	o := make(map[string]string, len(vars))
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		o[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return o
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		if v == "" {
			return make(map[string]string), nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("news2roms: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("news2roms: invalid type for map variable %s: %#v", varName, i)
	}
}

// loadEnvFile sets environment variables from the given dotenv file,
// if one is given. Variables that are already set are not changed.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(os.ExpandEnv(path)); err != nil {
		return fmt.Errorf("news2roms: loading environment file: %v", err)
	}
	return nil
}

// newLogger returns a logger writing at the given level.
func newLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("news2roms: LogLevel: %v", err)
	}
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	log.Level = lvl
	return log, nil
}

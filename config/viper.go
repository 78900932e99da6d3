/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package config

import (
	"bytes"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	libdur "github.com/nabbar/hnet/duration"
	liberr "github.com/nabbar/hnet/errors"
)

// Load reads the default configuration, merges in the file at path (when
// non-empty) and any HNET_-prefixed environment variable, and decodes the
// result into a validated Config.
//
// Precedence, highest first: environment, file, built-in default.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfig())); err != nil {
		return nil, liberr.Newf(liberr.InvalidArgument.Uint16(), "default config: %s", err.Error())
	}

	if path != "" {
		v.SetConfigFile(path)

		if err := v.MergeInConfig(); err != nil {
			return nil, liberr.Newf(liberr.InvalidArgument.Uint16(), "loading %s: %s", path, err.Error())
		}
	}

	v.SetEnvPrefix("HNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config

	dec := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		libdur.DecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))

	if err := v.Unmarshal(&cfg, dec); err != nil {
		return nil, liberr.Newf(liberr.InvalidArgument.Uint16(), "decoding config: %s", err.Error())
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

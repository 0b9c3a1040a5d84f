/*
 * config.go, part of gomdsim.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package mdsim

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//Commands are the shell command lines used to run the Amber programs.
//They run from the simulation's run path.
type Commands struct {
	TLeap     string `yaml:"tleap" validate:"required"`
	AmbPdb    string `yaml:"ambpdb" validate:"required"`
	SanderMin string `yaml:"sander_min" validate:"required"`
	SanderMD  string `yaml:"sander_md" validate:"required"`
	RefOpt    string `yaml:"ref_opt"` //appended to the sander commands when anchors are on
}

//Config holds the settings shared by all simulations. It is not modified by a Sim.
type Config struct {
	Commands Commands `yaml:"commands" validate:"required"`
	//Stop with an error when a major simulation error is detected, such as tleap
	//or sander not returning a coordinate set.
	StopOnError bool `yaml:"stop_on_error"`
	//Log the output of the failed program when stopping on an error.
	PrintOnError bool `yaml:"print_on_error"`
	//Store the absolute run path.
	UseFullPath bool `yaml:"use_full_path"`
	//Terminate uncapped chains with charged terminal residues.
	ChargedTermini bool `yaml:"charged_termini"`
	//Look up the atom for the second residue in RestSetRes with the name given for the first one.
	LegacyResAtomName bool `yaml:"legacy_res_atom_name"`
	//Caps used when a sequence is to be capped.
	NCap string `yaml:"ncap" validate:"required,alpha"`
	CCap string `yaml:"ccap" validate:"required,alpha"`
	//Largest random seed given to sander.
	MaxSeed int `yaml:"max_seed" validate:"gt=0"`
	//PB radii table applied after each build. One of the keys in prmtop.RadiiTables.
	PBRadii string `yaml:"pb_radii" validate:"oneof=GLGHS KJP none"`
	Verbose bool   `yaml:"verbose"`
}

//DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Commands: Commands{
			TLeap:     "tleap -f tleapin.txt > tleapout.txt",
			AmbPdb:    "ambpdb -p prmtop.parm7 < current.crd > current.pdb 2> /dev/null",
			SanderMin: "sander -O -i minin.txt -o minout.txt -p prmtop.parm7 -c minin.crd -r minout.crd -e minene.txt -inf mininfo.txt",
			SanderMD:  "sander -O -i mdin.txt -o mdout.txt -p prmtop.parm7 -c mdin.crd -r mdout.crd -x mdtrj.crd -e mdene.txt -inf mdinfo.txt",
			RefOpt:    " -ref ref.crd",
		},
		StopOnError:    true,
		PrintOnError:   true,
		UseFullPath:    true,
		ChargedTermini: true,
		NCap:           "ACE",
		CCap:           "NME",
		MaxSeed:        71276,
		PBRadii:        "GLGHS",
	}
}

var configValidate = validator.New()

//Validate checks that all the fields in C have acceptable values.
func (C *Config) Validate() error {
	if err := configValidate.Struct(C); err != nil {
		return Error{err.Error(), "", []string{"Validate"}, true, err}
	}
	return nil
}

//LoadConfig reads a YAML configuration file. Fields not present in the file keep
//their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error{err.Error(), path, []string{"os.ReadFile", "LoadConfig"}, true, err}
	}
	C := DefaultConfig()
	if err := yaml.Unmarshal(data, C); err != nil {
		return nil, Error{fmt.Sprintf("can't parse config: %v", err), path, []string{"yaml.Unmarshal", "LoadConfig"}, true, err}
	}
	if err := C.Validate(); err != nil {
		return nil, errDecorate(err, "LoadConfig")
	}
	return C, nil
}

//WriteConfig writes C to path as YAML.
func WriteConfig(C *Config, path string) error {
	data, err := yaml.Marshal(C)
	if err != nil {
		return Error{err.Error(), path, []string{"yaml.Marshal", "WriteConfig"}, true, err}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return Error{err.Error(), path, []string{"os.WriteFile", "WriteConfig"}, true, err}
	}
	return nil
}

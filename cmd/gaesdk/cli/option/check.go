package option

import "github.com/anchore/clio"

type Check struct {
	VerifyDigest bool `json:"verify-digest" yaml:"verify-digest" mapstructure:"verify-digest"`
	Updates      bool `json:"updates" yaml:"updates" mapstructure:"updates"`
}

func (o *Check) AddFlags(flags clio.FlagSet) {
	flags.BoolVarP(&o.VerifyDigest, "verify-digest", "d", "Verifying the digest of already installed files")
	flags.BoolVarP(&o.Updates, "updates", "", "Ask the update-check endpoint whether a newer SDK release is available")
}

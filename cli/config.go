package main

import (
	"encoding/json"
	"os"
	"path"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/greenorbit/phaseout/internal/file"
)

type config struct {
	GatewayAddress string        `json:"gatewayAddress"`
	APIAddress     string        `json:"apiAddress"`
	Token          *oauth2.Token `json:"token,omitempty"`
}

func getConfig() (*config, error) {
	phaseoutHome, err := getPhaseoutHome()
	if err != nil {
		return nil, errors.Wrap(err, "error finding phaseout home")
	}
	phaseoutConfigFile := path.Join(phaseoutHome, "config")
	if !file.Exists(phaseoutConfigFile) {
		return nil, errors.Errorf(
			"no phaseout configuration was found at %s; please use "+
				"`phaseout login` to continue\n",
			phaseoutConfigFile,
		)
	}

	configBytes, err := os.ReadFile(phaseoutConfigFile)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error reading phaseout config file at %s",
			phaseoutConfigFile,
		)
	}

	config := &config{}
	if err := json.Unmarshal(configBytes, config); err != nil {
		return nil, errors.Wrapf(
			err,
			"error parsing phaseout config file at %s",
			phaseoutConfigFile,
		)
	}

	return config, nil
}

func saveConfig(config *config) error {
	phaseoutHome, err := getPhaseoutHome()
	if err != nil {
		return errors.Wrap(err, "error finding phaseout home")
	}
	if _, err := os.Stat(phaseoutHome); err != nil {
		if !os.IsNotExist(err) {
			return errors.Wrapf(
				err,
				"error checking for existence of phaseout home at %s",
				phaseoutHome,
			)
		}
		// The directory doesn't exist-- create it
		if err := os.MkdirAll(phaseoutHome, 0755); err != nil {
			return errors.Wrapf(
				err,
				"error creating phaseout home at %s",
				phaseoutHome,
			)
		}
	}
	phaseoutConfigFile := path.Join(phaseoutHome, "config")

	configBytes, err := json.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "error marshaling config")
	}
	// The config file contains session tokens, so keep it private.
	if err := os.WriteFile(phaseoutConfigFile, configBytes, 0600); err != nil {
		return errors.Wrapf(err, "error writing to %s", phaseoutConfigFile)
	}
	return nil
}

func getMirrorPath() (string, error) {
	phaseoutHome, err := getPhaseoutHome()
	if err != nil {
		return "", errors.Wrap(err, "error finding phaseout home")
	}
	return path.Join(phaseoutHome, "mirror.db"), nil
}

func getPhaseoutHome() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", errors.Wrap(err, "error locating user's home directory")
	}

	return path.Join(homeDir, ".phaseout"), nil
}

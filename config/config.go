// Package config holds the declarative provisioning spec: which files get
// tuned, which package sets get installed, which mounts, environment defaults
// and services get ensured, and which optional add-ons are on the menu.
//
// The zero-value spec is fully usable; a YAML file only overrides parts of
// it. Environment variables in the YAML are expanded before parsing.
package config

import (
	"fmt"
	"time"

	"github.com/a8m/envsubst"
	"github.com/archprep/archprep/pkg/pacman"
	"github.com/creasty/defaults"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/k0sproject/dig"
	"gopkg.in/yaml.v2"
)

// Duration is a time.Duration that unmarshals from strings like "90s".
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Mount is one device-to-mountpoint mapping ensured in the mount table.
type Mount struct {
	Device     string `yaml:"device"`
	MountPoint string `yaml:"mountpoint"`
	FSType     string `yaml:"fstype" default:"ext4"`
	Options    string `yaml:"options" default:"defaults"`
	Dump       int    `yaml:"dump"`
	Pass       int    `yaml:"pass" default:"2"`
}

// Line renders the exact fstab line for the mount.
func (m Mount) Line() string {
	return fmt.Sprintf("%s %s %s %s %d %d", m.Device, m.MountPoint, m.FSType, m.Options, m.Dump, m.Pass)
}

func (m Mount) validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Device, validation.Required),
		validation.Field(&m.MountPoint, validation.Required),
	)
}

// EnvVar is an append-only default for the environment file. An existing
// assignment for the key is never overwritten.
type EnvVar struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// Service is a unit enabled when its owning package is installed.
type Service struct {
	Name    string `yaml:"name"`
	Package string `yaml:"package"`
}

// Group is an optional package group gated by a single confirmation. A
// declined group is skipped as a whole, never partially applied.
type Group struct {
	Name     string   `yaml:"name"`
	Question string   `yaml:"question"`
	Default  bool     `yaml:"default"`
	Packages []string `yaml:"packages"`
}

// Rice is a third-party desktop-appearance bundle installed by fetching and
// running a remote script. Options are passed to the installer as
// environment variables.
type Rice struct {
	Name    string      `yaml:"name"`
	URL     string      `yaml:"url"`
	Options dig.Mapping `yaml:"options"`
}

// Dotfiles configures the external configuration-application tool invoked
// once at the end of the sequence.
type Dotfiles struct {
	Command     string   `yaml:"command"`
	BackupGlobs []string `yaml:"backupGlobs"`
}

// Config is the complete provisioning spec.
type Config struct {
	PacmanConf        string   `yaml:"pacmanConf" default:"/etc/pacman.conf"`
	MirrorList        string   `yaml:"mirrorlist" default:"/etc/pacman.d/mirrorlist"`
	Fstab             string   `yaml:"fstab" default:"/etc/fstab"`
	EnvironmentFile   string   `yaml:"environmentFile" default:"/etc/environment"`
	ParallelDownloads int      `yaml:"parallelDownloads" default:"10"`
	MirrorCommand     string   `yaml:"mirrorCommand" default:"reflector --protocol https --latest 20 --sort rate"`
	MirrorTimeout     Duration `yaml:"mirrorTimeout"`

	Base        pacman.Set `yaml:"base"`
	Groups      []Group    `yaml:"groups"`
	Mounts      []Mount    `yaml:"mounts"`
	Environment []EnvVar   `yaml:"environment"`
	Services    []Service  `yaml:"services"`
	Dotfiles    Dotfiles   `yaml:"dotfiles"`
	Rices       []Rice     `yaml:"rices"`
}

// UnmarshalYAML fills in defaults for anything the spec file leaves out.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type config Config
	yc := (*config)(c)

	if err := unmarshal(yc); err != nil {
		return err
	}

	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("failed to set defaults: %w", err)
	}

	c.fillCanonical()
	return nil
}

// Load parses a spec from YAML after expanding environment variables. A nil
// or empty input yields the canonical default spec.
func Load(content []byte) (*Config, error) {
	expanded, err := envsubst.Bytes(content)
	if err != nil {
		return nil, fmt.Errorf("expand environment in config: %w", err)
	}

	c := &Config{}
	if len(expanded) == 0 {
		if err := defaults.Set(c); err != nil {
			return nil, err
		}
		c.fillCanonical()
	} else if err := yaml.Unmarshal(expanded, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate performs a configuration sanity check
func (c *Config) Validate() error {
	if err := c.Base.Validate(); err != nil {
		return err
	}
	for _, g := range c.Groups {
		if err := (pacman.Set{Name: g.Name, Packages: g.Packages}).Validate(); err != nil {
			return err
		}
	}
	for _, m := range c.Mounts {
		if err := m.validate(); err != nil {
			return err
		}
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.PacmanConf, validation.Required),
		validation.Field(&c.MirrorList, validation.Required),
		validation.Field(&c.Fstab, validation.Required),
		validation.Field(&c.EnvironmentFile, validation.Required),
		validation.Field(&c.ParallelDownloads, validation.Min(1)),
		validation.Field(&c.MirrorCommand, validation.Required),
	)
}

// fillCanonical supplies the list-valued defaults the `default` tags can't
// express. Values follow the latest revision of the setup scripts.
func (c *Config) fillCanonical() {
	if c.MirrorTimeout == 0 {
		c.MirrorTimeout = Duration(90 * time.Second)
	}
	if c.Base.Name == "" {
		c.Base.Name = "base"
	}
	if len(c.Base.Packages) == 0 {
		c.Base.Packages = []string{
			"base-devel", "git", "wget", "curl", "reflector",
			"networkmanager", "openssh", "htop", "neovim", "stow",
			"zsh", "unzip", "man-db",
		}
	}
	if len(c.Groups) == 0 {
		c.Groups = []Group{
			{
				Name:     "gaming",
				Question: "Install gaming packages (steam, lutris, wine)?",
				Packages: []string{"steam", "lutris", "wine", "gamemode"},
			},
			{
				Name:     "desktop environment",
				Question: "Install the desktop environment (plasma)?",
				Default:  true,
				Packages: []string{"plasma-meta", "konsole", "dolphin", "firefox"},
			},
			{
				Name:     "display manager",
				Question: "Install the display manager (sddm)?",
				Default:  true,
				Packages: []string{"sddm"},
			},
		}
	}
	if len(c.Mounts) == 0 {
		c.Mounts = []Mount{
			{Device: "/dev/sdb1", MountPoint: "/mnt/data", FSType: "ext4", Options: "defaults", Pass: 2},
			{Device: "/dev/sdc1", MountPoint: "/mnt/games", FSType: "ext4", Options: "defaults", Pass: 2},
			{Device: "/dev/sdd1", MountPoint: "/mnt/media", FSType: "ext4", Options: "defaults,noatime", Pass: 2},
		}
	}
	if len(c.Environment) == 0 {
		c.Environment = []EnvVar{
			{Key: "EDITOR", Value: "nvim"},
			{Key: "BROWSER", Value: "firefox"},
			{Key: "TERMINAL", Value: "konsole"},
		}
	}
	if len(c.Services) == 0 {
		c.Services = []Service{
			{Name: "NetworkManager.service", Package: "networkmanager"},
			{Name: "sshd.service", Package: "openssh"},
			{Name: "sddm.service", Package: "sddm"},
		}
	}
	if c.Dotfiles.Command == "" {
		c.Dotfiles.Command = "stow --dir $HOME/.dotfiles --target $HOME ."
	}
	if len(c.Dotfiles.BackupGlobs) == 0 {
		c.Dotfiles.BackupGlobs = []string{".config/**/*.conf", ".zshrc", ".bashrc"}
	}
	if len(c.Rices) == 0 {
		c.Rices = []Rice{
			{Name: "prasanthrangan/hyprdots", URL: "https://raw.githubusercontent.com/prasanthrangan/hyprdots/main/Scripts/install.sh"},
			{Name: "chadwm", URL: "https://raw.githubusercontent.com/thelinuxfleet/chadwm/master/install.sh"},
		}
	}
}

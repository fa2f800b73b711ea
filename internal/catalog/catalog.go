// Package catalog defines the selectable variables and builds the domain
// registry from them. Definitions come from the built-in defaults or a YAML
// file; variables found in the data without a definition are registered
// automatically as continuous viridis variables.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/couchcryptid/modis-choropleth/internal/domain"
	"gopkg.in/yaml.v3"
)

// File is the YAML document layout.
type File struct {
	Variables []Definition `yaml:"variables"`
}

// Definition describes one variable. Exactly one of Binned or Continuous is set.
type Definition struct {
	ID         string         `yaml:"id"`
	Name       string         `yaml:"name"`
	Unit       string         `yaml:"unit"`
	Binned     *BinnedDef     `yaml:"binned,omitempty"`
	Continuous *ContinuousDef `yaml:"continuous,omitempty"`
}

// BinnedDef holds breakpoints, the [low, high] domain and the palette.
type BinnedDef struct {
	Breakpoints []float64 `yaml:"breakpoints"`
	Domain      []float64 `yaml:"domain"`
	Palette     []string  `yaml:"palette"`
}

// ContinuousDef holds the domain, its policy and the interpolator name.
type ContinuousDef struct {
	Domain       []float64 `yaml:"domain"`
	Policy       string    `yaml:"policy"`
	Interpolator string    `yaml:"interpolator"`
}

// DefaultInterpolator colours auto-registered variables.
const DefaultInterpolator = "viridis"

var vegetationPalette = []string{"#a6611a", "#dfc27d", "#a6dba0", "#008837"}

// Defaults returns the built-in MODIS variable definitions.
func Defaults() []Definition {
	vegetation := func(id, name string) Definition {
		return Definition{ID: id, Name: name, Binned: &BinnedDef{
			Breakpoints: []float64{0.2, 0.4, 0.6},
			Domain:      []float64{-0.2, 1},
			Palette:     slices.Clone(vegetationPalette),
		}}
	}
	return []Definition{
		vegetation("NDVI", "Normalized difference vegetation index"),
		vegetation("EVI", "Enhanced vegetation index"),
		{ID: "LST_Day", Name: "Land surface temperature (day)", Unit: "°C", Continuous: &ContinuousDef{
			Domain: []float64{-20, 50}, Policy: string(domain.DomainGlobal), Interpolator: "magma",
		}},
		{ID: "LST_Night", Name: "Land surface temperature (night)", Unit: "°C", Continuous: &ContinuousDef{
			Domain: []float64{-30, 35}, Policy: string(domain.DomainGlobal), Interpolator: "magma",
		}},
		{ID: "ET", Name: "Evapotranspiration", Unit: "mm", Continuous: &ContinuousDef{
			Domain: []float64{0, 250}, Policy: string(domain.DomainGlobal), Interpolator: "greens",
		}},
	}
}

// Parse decodes a YAML variables document.
func Parse(r io.Reader) ([]Definition, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("variables file is empty")
		}
		return nil, fmt.Errorf("decode variables: %w", err)
	}
	if len(f.Variables) == 0 {
		return nil, errors.New("variables file defines no variables")
	}
	return f.Variables, nil
}

// LoadFile reads definitions from a YAML file.
func LoadFile(path string) ([]Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variables file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Build resolves definitions into a registry for the given store.
//
// Defined variables that do not occur in a non-empty store are skipped.
// Variables in the store without a definition are auto-registered with a
// global viridis domain. Global domains are taken from the store's value
// range; the configured domain is the fallback when the variable has no
// defined values.
func Build(defs []Definition, store *domain.Store, logger *slog.Logger) (*domain.Registry, error) {
	present := make(map[string]bool)
	for _, v := range store.Variables() {
		present[v] = true
	}

	defined := make(map[string]bool, len(defs))
	specs := make([]domain.VariableSpec, 0, len(defs))
	for _, def := range defs {
		if defined[def.ID] {
			return nil, fmt.Errorf("variable %q defined twice", def.ID)
		}
		defined[def.ID] = true

		if !store.Empty() && !present[def.ID] {
			logger.Debug("variable not present in data, skipping", "variable", def.ID)
			continue
		}
		spec, err := resolve(def, store)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	for _, id := range store.Variables() {
		if defined[id] {
			continue
		}
		spec, err := resolve(Definition{ID: id, Continuous: &ContinuousDef{Interpolator: DefaultInterpolator}}, store)
		if err != nil {
			return nil, err
		}
		logger.Info("auto-registered variable", "variable", id, "interpolator", DefaultInterpolator)
		specs = append(specs, spec)
	}

	return domain.NewRegistry(specs...)
}

func resolve(def Definition, store *domain.Store) (domain.VariableSpec, error) {
	spec := domain.VariableSpec{ID: def.ID, Name: def.Name, Unit: def.Unit}

	switch {
	case def.ID == "":
		return spec, errors.New("variable definition has empty id")
	case def.Binned != nil && def.Continuous != nil:
		return spec, fmt.Errorf("variable %q: binned and continuous are mutually exclusive", def.ID)
	case def.Binned != nil:
		if len(def.Binned.Domain) != 2 {
			return spec, fmt.Errorf("variable %q: binned domain needs [low, high]", def.ID)
		}
		mode, err := domain.NewBinned(def.Binned.Breakpoints, def.Binned.Domain[0], def.Binned.Domain[1], def.Binned.Palette)
		if err != nil {
			return spec, fmt.Errorf("variable %q: %w", def.ID, err)
		}
		spec.Mode = mode
	case def.Continuous != nil:
		mode, err := continuous(def, store)
		if err != nil {
			return spec, err
		}
		spec.Mode = mode
	default:
		return spec, fmt.Errorf("variable %q: needs a binned or continuous colour mode", def.ID)
	}
	return spec, nil
}

func continuous(def Definition, store *domain.Store) (domain.Continuous, error) {
	c := def.Continuous
	policy, err := domain.ParseDomainPolicy(c.Policy)
	if err != nil {
		return domain.Continuous{}, fmt.Errorf("variable %q: %w", def.ID, err)
	}

	name := c.Interpolator
	if name == "" {
		name = DefaultInterpolator
	}
	ip, ok := domain.InterpolatorByName(name)
	if !ok {
		return domain.Continuous{}, fmt.Errorf("variable %q: unknown interpolator %q", def.ID, name)
	}

	mode := domain.Continuous{Policy: policy, Interpolator: ip}
	switch len(c.Domain) {
	case 0:
		if policy == domain.DomainFixed {
			return domain.Continuous{}, fmt.Errorf("variable %q: fixed policy needs a domain", def.ID)
		}
	case 2:
		if !(c.Domain[0] < c.Domain[1]) {
			return domain.Continuous{}, fmt.Errorf("variable %q: domain [%g, %g] is empty", def.ID, c.Domain[0], c.Domain[1])
		}
		mode = mode.WithDomain(c.Domain[0], c.Domain[1])
	default:
		return domain.Continuous{}, fmt.Errorf("variable %q: domain needs [min, max]", def.ID)
	}

	if policy == domain.DomainGlobal {
		if lo, hi, ok := store.Range(def.ID); ok {
			mode = mode.WithDomain(lo, hi)
		}
	}
	return mode, nil
}

package device

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ElementType is the kind of network element a CT is mounted on.
type ElementType string

const (
	ElementLine  ElementType = "line"
	ElementTrafo ElementType = "trafo"
	ElementLoad  ElementType = "load"
)

// DefaultAccuracyClass is used when a CT is created without a class.
const DefaultAccuracyClass = "5P20"

// CT is a protection current transformer.
type CT struct {
	Name string `json:"name" yaml:"name"`
	Bus  int    `json:"bus" yaml:"bus"`
	// Element is the index of the line, transformer or load the CT measures.
	// Nil for a bus-mounted CT.
	Element     *int        `json:"element,omitempty" yaml:"element,omitempty"`
	ElementType ElementType `json:"element_type,omitempty" yaml:"element_type,omitempty"`

	PrimaryRating   float64 `json:"primary_rating" yaml:"primary_rating"`
	SecondaryRating float64 `json:"secondary_rating" yaml:"secondary_rating"`

	AccuracyClass     string  `json:"accuracy_class,omitempty" yaml:"accuracy_class,omitempty"`
	AccuracyClassANSI string  `json:"accuracy_class_ansi,omitempty" yaml:"accuracy_class_ansi,omitempty"`
	BurdenVA          float64 `json:"burden_va,omitempty" yaml:"burden_va,omitempty"`
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ratio is the turns ratio primary/secondary.
func (c CT) Ratio() float64 { return c.PrimaryRating / c.SecondaryRating }

// SecondaryCurrent maps a primary current to the relay side.
func (c CT) SecondaryCurrent(primary float64) float64 { return primary / c.Ratio() }

// PrimaryCurrent maps a relay-side current back to primary amperes.
func (c CT) PrimaryCurrent(secondary float64) float64 { return secondary * c.Ratio() }

// ALF returns the accuracy limit factor of the CT class, or 0 when the class
// is not a protection class.
func (c CT) ALF() float64 {
	_, alf, err := ParseAccuracyClass(c.accuracyClass())
	if err != nil {
		return 0
	}
	return alf
}

// CompositeErrorPct returns the composite error limit of the CT class in percent.
func (c CT) CompositeErrorPct() float64 {
	pct, _, err := ParseAccuracyClass(c.accuracyClass())
	if err != nil {
		return 0
	}
	return pct
}

// Saturates reports whether primary drives the secondary beyond the accuracy
// limit (SecondaryRating x ALF).
func (c CT) Saturates(primary float64) bool {
	alf := c.ALF()
	if alf <= 0 {
		return false
	}
	return c.SecondaryCurrent(primary) > c.SecondaryRating*alf
}

// Label is the CT name or a positional fallback.
func (c CT) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("CT@bus%d", c.Bus)
}

func (c CT) accuracyClass() string {
	if c.AccuracyClass == "" {
		return DefaultAccuracyClass
	}
	return c.AccuracyClass
}

// Validate checks ratings, placement and accuracy class.
func (c CT) Validate() error {
	name := c.Label()
	if c.Bus < 0 {
		return configErr(name, "bus", "bus index must be non-negative, got %d", c.Bus)
	}
	if !(c.PrimaryRating > 0) || math.IsInf(c.PrimaryRating, 0) {
		return configErr(name, "primary_rating", "must be positive, got %v", c.PrimaryRating)
	}
	if c.SecondaryRating != 1 && c.SecondaryRating != 5 {
		return configErr(name, "secondary_rating", "must be 1 or 5, got %v", c.SecondaryRating)
	}
	if c.BurdenVA < 0 {
		return configErr(name, "burden_va", "must be non-negative, got %v", c.BurdenVA)
	}
	switch {
	case c.Element == nil && c.ElementType != "":
		return configErr(name, "element", "element_type %q given without element", c.ElementType)
	case c.Element != nil:
		if *c.Element < 0 {
			return configErr(name, "element", "element index must be non-negative, got %d", *c.Element)
		}
		switch c.ElementType {
		case ElementLine, ElementTrafo, ElementLoad:
		default:
			return configErr(name, "element_type", "want line, trafo or load, got %q", c.ElementType)
		}
	}
	if _, _, err := ParseAccuracyClass(c.accuracyClass()); err != nil {
		return &ConfigurationError{Device: name, Field: "accuracy_class", Err: err}
	}
	return nil
}

// ParseAccuracyClass splits an IEC protection class such as "5P20" or
// "10PR10" into its composite error (percent) and accuracy limit factor.
func ParseAccuracyClass(class string) (errPct, alf float64, err error) {
	s := strings.ToUpper(strings.TrimSpace(class))
	i := strings.IndexByte(s, 'P')
	if i <= 0 || i == len(s)-1 {
		return 0, 0, fmt.Errorf("accuracy class %q is not of the form <error>P<ALF>", class)
	}
	rest := strings.TrimPrefix(s[i+1:], "R")
	errPct, err = strconv.ParseFloat(s[:i], 64)
	if err != nil || errPct <= 0 {
		return 0, 0, fmt.Errorf("accuracy class %q: bad composite error", class)
	}
	alf, err = strconv.ParseFloat(rest, 64)
	if err != nil || alf <= 0 {
		return 0, 0, fmt.Errorf("accuracy class %q: bad accuracy limit factor", class)
	}
	return errPct, alf, nil
}

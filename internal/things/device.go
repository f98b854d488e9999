package things

import "fmt"

// Capability is a Web Thing semantic type tag of a device.
type Capability string

// The capability tags a device may carry.
const (
	OnOffSwitch      Capability = "OnOffSwitch"
	Light            Capability = "Light"
	ColorControl     Capability = "ColorControl"
	MultiLevelSwitch Capability = "MultiLevelSwitch"
)

// Valid reports whether c is one of the known capabilities.
func (c Capability) Valid() bool {
	switch c {
	case OnOffSwitch, Light, ColorControl, MultiLevelSwitch:
		return true
	}
	return false
}

// SchemaContext is the @context of every thing description.
const SchemaContext = "https://webthings.io/schemas"

// Device is a thing with an ordered set of properties.
type Device struct {
	ID           string
	Title        string
	Capabilities []Capability

	properties []*Property
	index      map[string]*Property
}

// NewDevice creates a device without properties.
func NewDevice(id, title string, caps ...Capability) (*Device, error) {
	for _, c := range caps {
		if !c.Valid() {
			return nil, fmt.Errorf("unknown capability %q", c)
		}
	}
	return &Device{
		ID:           id,
		Title:        title,
		Capabilities: caps,
		index:        make(map[string]*Property),
	}, nil
}

// AddProperty registers p with its initial value. The initial value goes
// through the same validation as remote writes.
func (d *Device) AddProperty(p *Property, initial Value) error {
	if _, exists := d.index[p.Name]; exists {
		return fmt.Errorf("duplicate property %q", p.Name)
	}
	v, err := p.coerce(initial)
	if err != nil {
		return fmt.Errorf("invalid default: %w", err)
	}
	p.value = v
	d.properties = append(d.properties, p)
	d.index[p.Name] = p
	return nil
}

// Property returns the named property.
func (d *Device) Property(name string) (*Property, bool) {
	p, ok := d.index[name]
	return p, ok
}

// PropertyNames returns property names in registration order.
func (d *Device) PropertyNames() []string {
	names := make([]string, len(d.properties))
	for i, p := range d.properties {
		names[i] = p.Name
	}
	return names
}

// Link is a hypermedia reference inside a thing description.
type Link struct {
	Rel  string `json:"rel,omitempty" example:"properties" doc:"Link relation"`
	Href string `json:"href" example:"/things/board/properties/on" doc:"Target URL"`
}

// PropertyDescription describes one property in a thing description.
type PropertyDescription struct {
	Title        string   `json:"title,omitempty" example:"Set Pin IO12" doc:"Display title"`
	Description  string   `json:"description,omitempty" doc:"Human readable description"`
	Type         Type     `json:"type" enum:"boolean,number,string" doc:"Value type"`
	SemanticType string   `json:"@type,omitempty" example:"OnOffProperty" doc:"Semantic property type"`
	Minimum      *float64 `json:"minimum,omitempty" doc:"Lower bound for numbers"`
	Maximum      *float64 `json:"maximum,omitempty" doc:"Upper bound for numbers"`
	ReadOnly     bool     `json:"readOnly,omitempty" doc:"Rejects writes when true"`
	Links        []Link   `json:"links" doc:"Property links"`
}

// Description is a Web Thing description document.
type Description struct {
	Context    string                         `json:"@context" doc:"Schema context"`
	ID         string                         `json:"id" example:"board" doc:"Thing identifier"`
	Title      string                         `json:"title" example:"MATRIX Voice" doc:"Display name"`
	Types      []Capability                   `json:"@type" doc:"Capability tags"`
	Properties map[string]PropertyDescription `json:"properties" doc:"Properties keyed by name"`
	Links      []Link                         `json:"links" doc:"Thing links"`
}

// Describe renders the thing description with links under /things/{id}.
func (d *Device) Describe() Description {
	base := "/things/" + d.ID
	props := make(map[string]PropertyDescription, len(d.properties))
	for _, p := range d.properties {
		props[p.Name] = PropertyDescription{
			Title:        p.Title,
			Description:  p.Description,
			Type:         p.Type,
			SemanticType: p.SemanticType,
			Minimum:      p.Minimum,
			Maximum:      p.Maximum,
			ReadOnly:     p.ReadOnly,
			Links:        []Link{{Href: base + "/properties/" + p.Name}},
		}
	}

	caps := make([]Capability, len(d.Capabilities))
	copy(caps, d.Capabilities)

	return Description{
		Context:    SchemaContext,
		ID:         d.ID,
		Title:      d.Title,
		Types:      caps,
		Properties: props,
		Links:      []Link{{Rel: "properties", Href: base + "/properties"}},
	}
}

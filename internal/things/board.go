package things

import "fmt"

// Board device identity.
const (
	BoardID    = "board"
	BoardTitle = "MATRIX Voice"
)

// Board property names.
const (
	PropOn    = "on"
	PropLevel = "level"
	PropColor = "color"
)

// Board defaults.
const (
	DefaultLevel = 100
	DefaultColor = "#ffffff"
)

// GPIOPins are the exposed header pins mirrored from properties.
var GPIOPins = []int{12, 25, 26, 27}

// GPIOProperty returns the property name mirrored onto pin.
func GPIOProperty(pin int) string {
	return fmt.Sprintf("gpio%dlevel", pin)
}

type propertySeed struct {
	prop    *Property
	initial Value
}

// NewBoardDevice builds the MATRIX Voice thing. With gpio set it also
// carries one 0-255 level property per exposed pin.
func NewBoardDevice(gpio bool) (*Device, error) {
	caps := []Capability{OnOffSwitch, Light, ColorControl}
	if gpio {
		caps = append(caps, MultiLevelSwitch)
	}

	d, err := NewDevice(BoardID, BoardTitle, caps...)
	if err != nil {
		return nil, err
	}

	levelMin, levelMax := Bounds(0, 100)
	props := []propertySeed{
		{&Property{
			Name:         PropOn,
			Title:        "On/Off",
			Description:  "The on/off status of the LEDs",
			Type:         Boolean,
			SemanticType: "OnOffProperty",
		}, BoolValue(false)},
		{&Property{
			Name:         PropLevel,
			Title:        "Brightness",
			Description:  "The level of light from 0-100",
			Type:         Number,
			SemanticType: "BrightnessProperty",
			Minimum:      levelMin,
			Maximum:      levelMax,
		}, NumberValue(DefaultLevel)},
		{&Property{
			Name:         PropColor,
			Title:        "Color",
			Description:  "The color of light in RGB",
			Type:         String,
			SemanticType: "ColorProperty",
		}, StringValue(DefaultColor)},
	}

	if gpio {
		for _, pin := range GPIOPins {
			lo, hi := Bounds(0, 255)
			props = append(props, propertySeed{&Property{
				Name:         GPIOProperty(pin),
				Title:        fmt.Sprintf("Set Pin IO%d", pin),
				Description:  "Analog output pin",
				Type:         Number,
				SemanticType: "LevelProperty",
				Minimum:      lo,
				Maximum:      hi,
			}, NumberValue(0)})
		}
	}

	for _, p := range props {
		if err := d.AddProperty(p.prop, p.initial); err != nil {
			return nil, err
		}
	}
	return d, nil
}

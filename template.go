package compose

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Element type discriminators as they appear in template JSON.
const (
	TypeImage     = "image"
	TypeRectangle = "rectangle"
	TypeText      = "text"
)

// Defaults applied to fields a template leaves out.
const (
	DefaultColor    = "#000000"
	DefaultFontSize = 24.0
)

// Definition is a parsed template: an optional background and the ordered
// elements painted over it. A Definition is immutable once parsed; renders
// and stores share it without copying.
type Definition struct {
	// Background is a placeholder-eligible path or URL. Nil means the
	// template has no background.
	Background *string

	// Elements are painted in order; later elements overpaint earlier ones.
	Elements []Element
}

// Element is one paintable unit of a template. The set of variants is
// closed: ImageElement, RectangleElement, TextElement, UnknownElement and
// InvalidElement.
type Element interface {
	isElement()
}

// ClipMode selects how an image element is clipped.
type ClipMode string

// Clip modes.
const (
	ClipNone   ClipMode = "none"
	ClipCircle ClipMode = "circle"
)

// Align selects the horizontal anchor of a text element.
type Align string

// Text alignments.
const (
	AlignLeft   Align = "left"
	AlignRight  Align = "right"
	AlignCenter Align = "center"
)

// Border is the ring drawn behind a circle-clipped image.
type Border struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

// ImageElement paints a decoded image stretched into its bounding box.
type ImageElement struct {
	Name   string   `json:"name,omitempty"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Source string   `json:"source"`
	Clip   ClipMode `json:"clip,omitempty"`
	Border *Border  `json:"border,omitempty"`
}

func (ImageElement) isElement() {}

// Circle reports whether the image is clipped to a circle. Unknown clip
// values behave as ClipNone.
func (e ImageElement) Circle() bool {
	return e.Clip == ClipCircle
}

// RectangleElement fills a rectangle with optionally rounded corners.
type RectangleElement struct {
	Name   string  `json:"name,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

func (RectangleElement) isElement() {}

// TextElement draws a single line of text with its baseline at Y.
type TextElement struct {
	Name     string  `json:"name,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"fontSize"`
	Color    string  `json:"color"`
	Text     string  `json:"text"`
	Align    Align   `json:"align,omitempty"`
	Font     string  `json:"font,omitempty"`
}

func (TextElement) isElement() {}

// Alignment returns the effective alignment; invalid values fall back to
// AlignLeft.
func (e TextElement) Alignment() Align {
	switch e.Align {
	case AlignRight, AlignCenter:
		return e.Align
	default:
		return AlignLeft
	}
}

// UnknownElement is an element whose type is not one of the known kinds.
// It is kept so templates round-trip, and skipped when rendering.
type UnknownElement struct {
	Type   string
	Fields map[string]any
}

func (UnknownElement) isElement() {}

// InvalidElement is an element of a known type whose fields could not be
// decoded. Templates holding one are accepted by stores; rendering them
// fails with ErrElementShape.
type InvalidElement struct {
	Index int
	Type  string
	Value any
	Err   error
}

func (InvalidElement) isElement() {}

// ParseDefinition decodes a template from JSON. The payload must be an
// object with an "elements" array; anything else is rejected with
// ErrInvalidTemplateShape. Problems inside individual elements are not
// errors here: they surface as InvalidElement and fail at render time.
func ParseDefinition(data []byte) (*Definition, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplateShape, err)
	}
	return DefinitionFromMap(raw)
}

// DefinitionFromMap builds a Definition from an already decoded JSON
// object. It applies the same validation as ParseDefinition.
func DefinitionFromMap(raw map[string]any) (*Definition, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: template must be an object", ErrInvalidTemplateShape)
	}
	items, ok := raw["elements"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: \"elements\" must be an array", ErrInvalidTemplateShape)
	}

	def := &Definition{Elements: make([]Element, 0, len(items))}
	if bg, ok := raw["background"]; ok && bg != nil {
		s := stringify(bg)
		def.Background = &s
	}
	for i, item := range items {
		def.Elements = append(def.Elements, decodeElement(i, item))
	}
	return def, nil
}

// UnmarshalJSON implements json.Unmarshaler with ParseDefinition semantics.
func (d *Definition) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDefinition(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// MarshalJSON implements json.Marshaler. Unknown and invalid elements are
// written back as they were read.
func (d *Definition) MarshalJSON() ([]byte, error) {
	wire := struct {
		Background *string `json:"background"`
		Elements   []any   `json:"elements"`
	}{
		Background: d.Background,
		Elements:   make([]any, 0, len(d.Elements)),
	}
	for _, el := range d.Elements {
		switch e := el.(type) {
		case ImageElement:
			wire.Elements = append(wire.Elements, struct {
				Type string `json:"type"`
				ImageElement
			}{TypeImage, e})
		case RectangleElement:
			wire.Elements = append(wire.Elements, struct {
				Type string `json:"type"`
				RectangleElement
			}{TypeRectangle, e})
		case TextElement:
			wire.Elements = append(wire.Elements, struct {
				Type string `json:"type"`
				TextElement
			}{TypeText, e})
		case UnknownElement:
			wire.Elements = append(wire.Elements, e.Fields)
		case InvalidElement:
			wire.Elements = append(wire.Elements, e.Value)
		}
	}
	return json.Marshal(wire)
}

// decodeElement turns one decoded JSON value into an Element.
func decodeElement(index int, item any) Element {
	m, ok := item.(map[string]any)
	if !ok {
		return InvalidElement{
			Index: index,
			Value: item,
			Err:   fmt.Errorf("element must be an object, got %T", item),
		}
	}

	typ, _ := m["type"].(string)
	var (
		el  Element
		err error
	)
	switch typ {
	case TypeImage:
		e := ImageElement{Clip: ClipNone}
		err = decodeFields(m, &e)
		el = e
	case TypeRectangle:
		e := RectangleElement{Color: DefaultColor}
		err = decodeFields(m, &e)
		el = e
	case TypeText:
		e := TextElement{FontSize: DefaultFontSize, Color: DefaultColor, Align: AlignLeft}
		err = decodeFields(m, &e)
		el = e
	default:
		return UnknownElement{Type: typ, Fields: m}
	}
	if err != nil {
		return InvalidElement{Index: index, Type: typ, Value: m, Err: err}
	}
	return el
}

// decodeFields copies the fields present in m onto out, leaving defaults
// in place for absent or null fields. Numbers given as strings and scalars
// given for string fields are accepted.
func decodeFields(m map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.DecodeHookFuncType(finiteNumbers),
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// finiteNumbers rejects NaN and infinite values for numeric fields,
// including strings such as "Infinity" that weak decoding would accept.
func finiteNumbers(_, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.Float64 && to.Kind() != reflect.Float32 {
		return data, nil
	}
	var f float64
	switch v := data.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			// Left to the decoder, which reports it or reads "" as zero.
			return data, nil
		}
		f, data = parsed, parsed
	default:
		return data, nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number %v is not finite", f)
	}
	return data, nil
}

// elementName returns the diagnostic name of el, if it has one.
func elementName(el Element) string {
	switch e := el.(type) {
	case ImageElement:
		return e.Name
	case RectangleElement:
		return e.Name
	case TextElement:
		return e.Name
	case UnknownElement:
		name, _ := e.Fields["name"].(string)
		return name
	case InvalidElement:
		if m, ok := e.Value.(map[string]any); ok {
			name, _ := m["name"].(string)
			return name
		}
	}
	return ""
}

// elementType returns the type discriminator of el.
func elementType(el Element) string {
	switch e := el.(type) {
	case ImageElement:
		return TypeImage
	case RectangleElement:
		return TypeRectangle
	case TextElement:
		return TypeText
	case UnknownElement:
		return e.Type
	case InvalidElement:
		return e.Type
	}
	return ""
}

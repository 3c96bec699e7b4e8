package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/image"
	"github.com/vkngwrapper/i432/segment"
	"gopkg.in/yaml.v2"
)

// Description is the YAML description of an image
type Description struct {
	MemorySize            int                  `yaml:"memorySize"`
	Alignment             uint                 `yaml:"alignment"`
	DefaultDirectory      int                  `yaml:"defaultDirectory"`
	ObjectTableSystemType uint8                `yaml:"objectTableSystemType"`
	Segments              []SegmentDescription `yaml:"segments"`
}

type SegmentDescription struct {
	Name       string             `yaml:"name"`
	Base       string             `yaml:"base"`
	SystemType uint8              `yaml:"systemType"`
	Coord      *CoordDescription  `yaml:"coord"`
	PhysAddr   *int               `yaml:"physAddr"`
	Fields     []FieldDescription `yaml:"fields"`
}

type CoordDescription struct {
	Directory int `yaml:"directory"`
	Index     int `yaml:"index"`
}

type FieldDescription struct {
	Name string `yaml:"name"`
	// Kind is "data" or "access". Fields default to the kind matching their segment's base type.
	Kind   string `yaml:"kind"`
	Size   int    `yaml:"size"`
	Offset *int   `yaml:"offset"`
	Index  *int   `yaml:"index"`
	Value  uint64 `yaml:"value"`
	Target string `yaml:"target"`
}

func loadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading image description")
	}

	var d Description
	if err := yaml.UnmarshalStrict(data, &d); err != nil {
		return nil, errors.Wrap(err, "unmarshaling image description")
	}

	return &d, nil
}

// Options returns the builder options the description asks for
func (d *Description) Options() image.BuildOptions {
	return image.BuildOptions{
		MemorySize:            d.MemorySize,
		Alignment:             d.Alignment,
		DefaultDirectory:      d.DefaultDirectory,
		ObjectTableSystemType: d.ObjectTableSystemType,
	}
}

// SegmentSpecs converts every segment of the description
func (d *Description) SegmentSpecs() ([]image.SegmentSpec, error) {
	specs := make([]image.SegmentSpec, 0, len(d.Segments))
	for _, s := range d.Segments {
		spec, err := s.spec()
		if err != nil {
			return nil, errors.Wrapf(err, "segment %s", s.Name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func (s *SegmentDescription) spec() (image.SegmentSpec, error) {
	baseType := descriptor.BaseTypeData
	if s.Base != "" {
		var err error
		baseType, err = descriptor.ParseBaseType(s.Base)
		if err != nil {
			return image.SegmentSpec{}, err
		}
	}

	spec := image.SegmentSpec{
		Name:       s.Name,
		BaseType:   baseType,
		SystemType: s.SystemType,
		PhysAddr:   s.PhysAddr,
	}
	if s.Coord != nil {
		spec.Coord = &descriptor.Coord{Directory: s.Coord.Directory, Segment: s.Coord.Index}
	}

	for _, f := range s.Fields {
		field, err := f.field(baseType)
		if err != nil {
			return image.SegmentSpec{}, err
		}
		spec.Fields = append(spec.Fields, field)
	}

	return spec, nil
}

func (f *FieldDescription) field(baseType descriptor.BaseType) (segment.Field, error) {
	kind := segment.DataField
	if baseType == descriptor.BaseTypeAccess {
		kind = segment.AccessField
	}

	switch f.Kind {
	case "":
	case "data":
		kind = segment.DataField
	case "access":
		kind = segment.AccessField
	default:
		return segment.Field{}, errors.Newf("field %s: unknown kind %q", f.Name, f.Kind)
	}

	field := segment.Field{
		Name:     f.Name,
		Kind:     kind,
		SizeBits: f.Size,
		Value:    f.Value,
		Target:   f.Target,
	}

	if kind == segment.AccessField {
		if f.Offset != nil || f.Size != 0 {
			return segment.Field{}, errors.Newf("access field %s takes an index rather than an offset or size", f.Name)
		}
		if f.Index != nil {
			field.Fixed = true
			field.Index = *f.Index
		}
		return field, nil
	}

	if f.Index != nil || f.Target != "" {
		return segment.Field{}, errors.Newf("data field %s takes an offset and value rather than an index or target", f.Name)
	}
	if f.Offset != nil {
		field.Fixed = true
		field.OffsetBits = *f.Offset
	}
	return field, nil
}

// newBuilder creates a builder holding every segment of the description
func newBuilder(d *Description) (*image.Builder, error) {
	policy, err := parsePolicy(policyName)
	if err != nil {
		return nil, err
	}

	options := d.Options()
	options.Policy = policy
	if verbose {
		options.Flags |= image.BuildValidate | image.BuildLogAllocations
	}

	builder, err := image.NewBuilder(newLogger(), options)
	if err != nil {
		return nil, err
	}

	specs, err := d.SegmentSpecs()
	if err != nil {
		return nil, err
	}

	for _, spec := range specs {
		if err := builder.AddSegment(spec); err != nil {
			return nil, err
		}
	}

	return builder, nil
}

package segment

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/memutils"
)

// Resolver converts the name of a segment into an access descriptor referring to it
type Resolver func(target string) (descriptor.AccessDescriptor, error)

// Result is the outcome of laying out a segment's fields
type Result struct {
	// Placements holds every field in declaration order
	Placements []Placement
	// LengthBits is the trimmed length of the segment body
	LengthBits int
	// Holes is true if some bits below LengthBits belong to no field
	Holes bool
}

// LengthBytes returns the trimmed length of the segment body in whole bytes
func (r *Result) LengthBytes() int {
	return memutils.BitsToBytes(r.LengthBits)
}

// Placement returns the placement of the field with the provided name
func (r *Result) Placement(name string) (*Placement, bool) {
	for index := range r.Placements {
		if r.Placements[index].Name == name {
			return &r.Placements[index], true
		}
	}

	return nil, false
}

// Body renders the initial contents of the segment body. Data fields receive their Value and access fields
// receive the access descriptor resolve returns for their Target. Unused bits are zero.
func (r *Result) Body(resolve Resolver) ([]byte, error) {
	body := make([]byte, r.LengthBytes())

	for index := range r.Placements {
		placement := &r.Placements[index]

		var err error
		if placement.Kind == AccessField {
			err = writeAccessField(body, placement, resolve)
		} else {
			err = writeDataField(body, placement)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", placement.Name)
		}
	}

	return body, nil
}

func writeDataField(body []byte, placement *Placement) error {
	width := min(placement.Size(), descriptor.MaxFieldWidth)
	return descriptor.PutBits(body, placement.Offset, width, placement.Value)
}

func writeAccessField(body []byte, placement *Placement, resolve Resolver) error {
	if placement.Offset%AccessFieldBits != 0 {
		return errors.Newf("access field at bit %d is not aligned to %d bits", placement.Offset, AccessFieldBits)
	}
	if placement.Target == "" {
		return nil
	}
	if resolve == nil {
		return errors.Newf("no resolver for access to %s", placement.Target)
	}

	ad, err := resolve(placement.Target)
	if err != nil {
		return err
	}

	return ad.Encode(body, placement.Offset/8)
}

// WriteJson populates a json object describing the layout
func (r *Result) WriteJson(json *jwriter.ObjectState) {
	json.Name("LengthBits").Int(r.LengthBits)
	json.Name("LengthBytes").Int(r.LengthBytes())
	json.Name("Holes").Bool(r.Holes)

	fields := json.Name("Fields").Array()
	defer fields.End()

	for index := range r.Placements {
		placement := &r.Placements[index]

		obj := fields.Object()
		obj.Name("Name").String(placement.Name)
		obj.Name("Kind").String(placement.Kind.String())
		obj.Name("Offset").Int(placement.Offset)
		obj.Name("Size").Int(placement.Size())
		obj.Name("Fixed").Bool(placement.Fixed)
		if placement.Target != "" {
			obj.Name("Target").String(placement.Target)
		}
		obj.End()
	}
}

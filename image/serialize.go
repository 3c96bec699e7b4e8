package image

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
)

func (b *Builder) serialize() ([]byte, error) {
	highest, err := b.memory.HighestAllocated()
	if err != nil {
		return nil, err
	}
	image := make([]byte, highest+1)

	for _, seg := range b.Segments() {
		prefix := descriptor.AccessDescriptor{
			Coord: seg.Coord,
			Valid: true,
		}
		err = prefix.Encode(image, seg.Base-descriptor.PrefixSize)
		if err != nil {
			return nil, errors.Wrapf(err, "segment %s prefix", seg.Name)
		}

		var body []byte
		if seg.table != nil {
			body, err = seg.table.body()
		} else {
			body, err = seg.Layout.Body(b.resolve)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "segment %s", seg.Name)
		}

		copy(image[seg.Base:seg.Base+seg.Length], body)
	}

	return image, nil
}

// resolve produces the access descriptor that declared segments use to refer to the named segment
func (b *Builder) resolve(target string) (descriptor.AccessDescriptor, error) {
	seg, ok := b.Segment(target)
	if !ok {
		return descriptor.AccessDescriptor{}, errors.Newf("no segment named %s", target)
	}

	return descriptor.AccessDescriptor{
		Coord: seg.Coord,
		Rights: descriptor.Rights{
			Read:  true,
			Write: true,
		},
		Valid: true,
	}, nil
}

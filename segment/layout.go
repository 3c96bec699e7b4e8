package segment

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/memutils"
	"golang.org/x/exp/slog"
)

// Placement is a field together with the bit offset it was assigned
type Placement struct {
	Field
	Offset int
}

// End returns the bit offset just past the field
func (p *Placement) End() int {
	return p.Offset + p.Size()
}

// Layout places every field of a segment within space. Fixed fields are placed first, in declaration
// order, then every other field is placed in declaration order wherever space finds room. The segment
// length is trimmed to just past the highest placed bit.
//
// Two fixed fields that overlap fail the layout with an error wrapping memutils.AllocationError that
// names both fields.
func Layout(logger *slog.Logger, space FieldSpace, fields []Field) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}

	result := &Result{
		Placements: make([]Placement, len(fields)),
	}
	names := make(map[string]struct{}, len(fields))

	for index, field := range fields {
		if field.Name != "" {
			if _, duplicate := names[field.Name]; duplicate {
				return nil, errors.Newf("field name %s is used more than once", field.Name)
			}
			names[field.Name] = struct{}{}
		}
		result.Placements[index].Field = field
	}

	var placedFixed []*Placement
	for index := range result.Placements {
		placement := &result.Placements[index]
		if !placement.Fixed {
			continue
		}

		offset, err := placement.FixedOffset()
		if err != nil {
			return nil, err
		}

		_, err = space.AllocateAt(offset, placement.Size(), placement.Name)
		if errors.Is(err, memutils.AllocationError) {
			return nil, errors.Wrapf(err, "fixed field %s at bit %d collides with %s", placement.Name, offset, collision(placedFixed, offset, placement.Size()))
		} else if err != nil {
			return nil, errors.Wrapf(err, "fixed field %s", placement.Name)
		}

		placement.Offset = offset
		placedFixed = append(placedFixed, placement)
		logPlacement(logger, placement)
	}

	for index := range result.Placements {
		placement := &result.Placements[index]
		if placement.Fixed {
			continue
		}

		offset, err := space.Allocate(placement.Size(), placement.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", placement.Name)
		}

		placement.Offset = offset
		logPlacement(logger, placement)
	}

	length, err := space.LastFreeRange()
	if err != nil {
		return nil, err
	}

	contiguous, err := space.ContiguousFromZero()
	if err != nil {
		return nil, err
	}

	result.LengthBits = length
	result.Holes = !contiguous

	logger.LogAttrs(context.Background(), slog.LevelDebug, "segment layout complete",
		slog.Int("fields", len(fields)),
		slog.Int("lengthBits", result.LengthBits),
		slog.Bool("holes", result.Holes),
	)

	return result, nil
}

func collision(placed []*Placement, offset, size int) string {
	for _, other := range placed {
		if offset < other.End() && other.Offset < offset+size {
			return other.Name
		}
	}

	return "another field"
}

func logPlacement(logger *slog.Logger, placement *Placement) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "placed field",
		slog.String("name", placement.Name),
		slog.String("kind", placement.Kind.String()),
		slog.Int("offset", placement.Offset),
		slog.Int("size", placement.Size()),
		slog.Bool("fixed", placement.Fixed),
	)
}

package image

import (
	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/i432/memutils"
)

// Map populates a json object describing the built image: the physical allocation map, usage of the
// object tables, and every placed segment
func (b *Builder) Map(json *jwriter.ObjectState) error {
	if !b.built {
		return errors.New("the image has not been built")
	}

	memory := json.Name("Memory").Object()
	b.memory.PrintDetailedMap(&memory)
	memory.End()

	var stats memutils.DetailedStatistics
	stats.Clear()
	for _, table := range b.sortedTables() {
		table.slots.AddDetailedStatistics(&stats)
	}

	tables := json.Name("ObjectTables").Object()
	stats.WriteJson(&tables)
	tables.End()

	segments := json.Name("Segments").Array()
	defer segments.End()

	for _, seg := range b.Segments() {
		obj := segments.Object()
		obj.Name("Name").String(seg.Name)
		obj.Name("Directory").Int(seg.Coord.Directory)
		obj.Name("Index").Int(seg.Coord.Segment)
		obj.Name("BaseType").String(seg.BaseType.String())
		obj.Name("SystemType").Int(int(seg.SystemType))
		obj.Name("Base").Int(seg.Base)
		obj.Name("Length").Int(seg.Length)
		obj.Name("ObjectTable").Bool(seg.IsObjectTable())
		obj.End()
	}

	return nil
}

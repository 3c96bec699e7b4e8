package decode

import (
	"sort"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// WriteJson populates a json object with every decoded object table and its entries. Entry fields are
// written in layout order.
func (img *Image) WriteJson(json *jwriter.ObjectState) {
	indices := make([]int, 0, len(img.Tables))
	for index := range img.Tables {
		indices = append(indices, index)
	}
	sort.Ints(indices)

	tables := json.Name("Tables").Array()
	for _, index := range indices {
		table := img.Tables[index]

		obj := tables.Object()
		obj.Name("Directory").Int(index)
		obj.Name("Base").Int(table.Descriptor.Base)
		obj.Name("Length").Int(table.Descriptor.Length)
		obj.Name("FreeIndex").Int(table.Header.FreeIndex)
		obj.Name("EndIndex").Int(table.Header.EndIndex)

		entries := obj.Name("Entries").Array()
		for _, entry := range table.Entries {
			writeEntry(entries.Object(), entry)
		}
		entries.End()

		obj.End()
	}
	tables.End()

	json.Name("SegmentCount").Int(len(img.Segments))
}

func writeEntry(obj jwriter.ObjectState, entry Entry) {
	obj.Name("Index").Int(entry.Index)
	obj.Name("Kind").String(entry.Kind.String())

	values := obj.Name("Values").Object()
	for _, field := range entry.Kind.Layout().Fields {
		values.Name(field.Name).Int(int(entry.Values[field.Name]))
	}
	values.End()

	obj.End()
}

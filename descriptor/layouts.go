package descriptor

const (
	// Size is the size in bytes of every object table entry
	Size = 16
	// AccessDescriptorSize is the size in bytes of an access descriptor
	AccessDescriptorSize = 4
	// PrefixSize is the size in bytes of the prefix that precedes every segment body in physical memory.
	// The prefix begins with an access descriptor naming the segment.
	PrefixSize = 8
	// MaxIndex is the largest directory or segment index that fits in a 12-bit index field
	MaxIndex = 1<<12 - 1
)

var AccessDescriptorLayout = Layout{
	Name:     "AccessDescriptor",
	SizeBits: 32,
	Fields: []Field{
		{"valid", 0, 1},
		{"system_rights", 1, 3},
		{"seg_index", 4, 12},
		{"delete", 16, 1},
		{"heap", 17, 1},
		{"read", 18, 1},
		{"write", 19, 1},
		{"dir_index", 20, 12},
	},
}

var ObjectTableHeaderLayout = Layout{
	Name:     "ObjectTableHeader",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 5},
		{"preserved_5", 5, 11},
		{"reserved_16", 16, 4},
		{"free_index", 20, 12},
		{"reserved_32", 32, 4},
		{"end_index", 36, 12},
		{"fault_level_number", 48, 16},
		{"preserved_64", 64, 8},
		{"reclamation", 72, 1},
		{"level_number", 80, 16},
		{"storage_claim", 96, 32},
	},
}

var FreeDescriptorLayout = Layout{
	Name:     "FreeDescriptor",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 5},
		{"preserved_5", 5, 11},
		{"reserved_16", 16, 4},
		{"free_index", 20, 12},
		{"preserved_32", 32, 32},
		{"preserved_64", 64, 8},
		{"reclamation", 72, 1},
		{"reserved_73", 73, 7},
		{"reserved_80", 80, 16},
		{"preserved_96", 96, 16},
	},
}

var StorageDescriptorLayout = Layout{
	Name:     "StorageDescriptor",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 2},
		{"valid", 2, 1},
		{"base_type", 3, 1},
		{"storage_associated", 4, 1},
		{"io_lock", 5, 1},
		{"altered", 6, 1},
		{"accessed", 7, 1},
		{"segment_base", 8, 24},
		{"segment_length", 32, 16},
		{"preserved_48", 48, 16},
		{"system_type", 64, 5},
		{"processor_class", 69, 3},
		{"reclamation", 72, 1},
		{"reserved_73", 73, 7},
		{"level_number", 80, 16},
		{"dirty", 96, 1},
		{"preserved", 97, 31},
	},
}

var RefinementDescriptorLayout = Layout{
	Name:     "RefinementDescriptor",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 2},
		{"valid", 2, 1},
		{"base_type", 3, 1},
		{"bypass_seg_index", 4, 12},
		{"preserved_16", 16, 4},
		{"bypass_dir_index", 20, 12},
		{"refinement_length", 32, 16},
		{"base_displacement", 48, 16},
		{"system_type", 64, 5},
		{"processor_class", 69, 3},
		{"reclamation", 72, 1},
		{"reserved_73", 73, 7},
		{"level_number", 80, 16},
		{"ad_preserved_96", 96, 4},
		{"ad_seg_index", 100, 12},
		{"ad_preserved_112", 112, 4},
		{"ad_dir_index", 116, 12},
	},
}

var TypeDescriptorLayout = Layout{
	Name:     "TypeDescriptor",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 2},
		{"valid", 2, 1},
		{"private", 3, 1},
		{"preserved_4", 4, 32},
		{"tdo_seg_index", 36, 12},
		{"preserved_48", 48, 4},
		{"tdo_dir_index", 52, 12},
		{"preserved_64", 64, 8},
		{"reclamation", 72, 1},
		{"reserved_73", 73, 7},
		{"level", 80, 16},
		{"preserved_96", 96, 4},
		{"typed_obj_seg_index", 100, 12},
		{"preserved_112", 112, 4},
		{"typed_obj_dir_index", 116, 12},
	},
}

var InterconnectDescriptorLayout = Layout{
	Name:     "InterconnectDescriptor",
	SizeBits: 128,
	Fields: []Field{
		{"descriptor_type", 0, 2},
		{"valid", 2, 1},
		{"descriptor_subtype", 3, 2},
		{"io_lock", 5, 1},
		{"altered", 6, 1},
		{"accessed", 7, 1},
		{"base_address", 8, 24},
		{"length", 32, 16},
		{"preserved_48", 48, 16},
		{"preserved_64", 64, 8},
		{"reclamation", 72, 1},
		{"reserved_73", 73, 7},
		{"level", 80, 16},
		{"preserved_96", 96, 16},
	},
}

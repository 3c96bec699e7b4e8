// Package segment assigns bit offsets to the fields of a segment body and renders the body's initial
// contents.
//
//go:generate mockgen -destination mocks/field_space.go -package mock_segment github.com/vkngwrapper/i432/segment FieldSpace
package segment

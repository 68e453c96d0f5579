package models

import "fmt"

// Variant is a single-locus substitution or small indel.
// Identity for deduplication purposes is (contig, position, ref, alt);
// a Variant is never mutated after construction.
type Variant struct {
	Id       string `json:"id"`
	Contig   string `json:"contig"`
	Position int    `json:"position"` // 1-based
	Ref      string `json:"ref"`
	Alt      string `json:"alt"`
}

// Key returns the deduplication identity of this variant.
// Two mutation records from different samples describing the same
// genomic change share a key and thus share one predictor invocation.
func (v *Variant) Key() string {
	return fmt.Sprintf("%s:%d:%s>%s", v.Contig, v.Position, v.Ref, v.Alt)
}

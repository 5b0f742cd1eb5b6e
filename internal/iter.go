package internal

import (
	"iter"
)

// ConcatSeq chains several iterator sequences into one.
func ConcatSeq[T any](seqs ...iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, seq := range seqs {
			for val := range seq {
				if !yield(val) {
					return
				}
			}
		}
	}
}

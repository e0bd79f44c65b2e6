// SPDX-License-Identifier: EPL-2.0

package codebook

import "errors"

// ErrUnsupported is wrapped by every error that rejects a codebook definition.
var ErrUnsupported = errors.New("codebook: unsupported codebook")

var (
	ErrInvalidLengths = newError("mismatched or invalid code lengths")
	ErrOverlongJump   = newError("jump offset exceeds table limit")
	ErrUnsaturated    = newError("block is not saturated in a non-sparse codebook")
	ErrOverspecified  = newError("huffman tree is overspecified")
	ErrUnderspecified = newError("huffman tree is underspecified")
)

type codebookError struct {
	msg string
}

func (e *codebookError) Error() string { return "codebook: " + e.msg }
func (e *codebookError) Unwrap() error { return ErrUnsupported }

func newError(msg string) error {
	return &codebookError{msg: msg}
}

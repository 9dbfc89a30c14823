// resnet.go implements the SEANet residual block: a bottlenecked two-conv
// path (kernel k then 1x1, channel count divided by the compress factor in
// between) plus a 1x1 convolution or identity shortcut.

package seanet

import (
	"strconv"

	"github.com/thesyncim/goencodec/tensor"
)

// ResnetBlock is one residual unit of the encoder/decoder stacks.
type ResnetBlock struct {
	// Block holds the ordered residual path: ELU, dilated conv, ELU, 1x1
	// conv. Indices match the trained artifact's parameter paths.
	Block []Layer
	// Shortcut is a 1x1 conv, or nil for an identity shortcut.
	Shortcut *Conv
}

// NewResnetBlock builds a residual block over dim channels with the given
// dilation on the first convolution.
func NewResnetBlock(cfg *Config, dim, dilation int) *ResnetBlock {
	hidden := dim / cfg.Compress
	r := &ResnetBlock{
		Block: []Layer{
			ELU{},
			NewConv(cfg, dim, hidden, cfg.ResidualKernelSize, 1, dilation),
			ELU{},
			NewConv(cfg, hidden, dim, 1, 1, 1),
		},
	}
	if cfg.ConvShortcut {
		r.Shortcut = NewConv(cfg, dim, dim, 1, 1, 1)
	}
	return r
}

// Apply runs the residual path and adds the shortcut.
func (r *ResnetBlock) Apply(x *tensor.Tensor) *tensor.Tensor {
	h := x
	for _, l := range r.Block {
		h = l.Apply(h)
	}
	if r.Shortcut != nil {
		return add(r.Shortcut.Apply(x), h)
	}
	return add(x, h)
}

func (r *ResnetBlock) namedParams(prefix string, dst map[string]*tensor.Tensor) {
	for i, l := range r.Block {
		if p, ok := l.(paramLayer); ok {
			p.namedParams(prefix+".block."+strconv.Itoa(i), dst)
		}
	}
	if r.Shortcut != nil {
		r.Shortcut.namedParams(prefix+".shortcut", dst)
	}
}

package tensor

import (
	"fmt"
	"math"
)

// The kernels in this file are stateless and operate on 4-D tensors laid
// out as [batch, channels, height, width]. They validate ranks and sizes
// up front and panic on violation: a malformed call is a programmer error,
// not a recoverable condition.

// Convolve computes the cross-correlation of input [N, inC, H, W] with
// kernel [outC, inC, kH, kW] at the given stride.
//
// With usePadding, symmetric zero padding of kH/2 and kW/2 is applied
// ("same"-style; not exact for even kernel sizes). Output spatial size is
// (in - k + 2*pad)/stride + 1. Kernel taps falling outside the input
// contribute zero. No bias is added; that is the calling layer's job.
func Convolve(input, kernel *Tensor, stride int, usePadding bool) *Tensor {
	if input.Rank() != 4 {
		panic(fmt.Sprintf("tensor: convolve input must be 4-D [N,C,H,W], got rank %d", input.Rank()))
	}
	if kernel.Rank() != 4 {
		panic(fmt.Sprintf("tensor: convolve kernel must be 4-D [outC,inC,kH,kW], got rank %d", kernel.Rank()))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("tensor: convolve stride must be positive, got %d", stride))
	}

	in := input.Shape()
	ks := kernel.Shape()
	batch, inC, inH, inW := in[0], in[1], in[2], in[3]
	outC, kInC, kH, kW := ks[0], ks[1], ks[2], ks[3]
	if inC != kInC {
		panic(fmt.Sprintf("tensor: convolve input channels %d != kernel channels %d", inC, kInC))
	}

	padH, padW := 0, 0
	if usePadding {
		padH, padW = kH/2, kW/2
	}
	outH := (inH-kH+2*padH)/stride + 1
	outW := (inW-kW+2*padW)/stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("tensor: convolve output %dx%d is empty (input %dx%d, kernel %dx%d, stride %d)",
			outH, outW, inH, inW, kH, kW, stride))
	}

	out := MustNew(Shape{batch, outC, outH, outW})
	inData := input.Data()
	kData := kernel.Data()
	outData := out.Data()

	for n := 0; n < batch; n++ {
		for oc := 0; oc < outC; oc++ {
			outBase := (n*outC + oc) * outH * outW
			kernBase := oc * inC * kH * kW
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := 0.0
					for ic := 0; ic < inC; ic++ {
						inBase := (n*inC + ic) * inH * inW
						kBase := kernBase + ic*kH*kW
						for kh := 0; kh < kH; kh++ {
							ih := oh*stride + kh - padH
							if ih < 0 || ih >= inH {
								continue
							}
							rowBase := inBase + ih*inW
							kRowBase := kBase + kh*kW
							for kw := 0; kw < kW; kw++ {
								iw := ow*stride + kw - padW
								if iw < 0 || iw >= inW {
									continue
								}
								sum += inData[rowBase+iw] * kData[kRowBase+kw]
							}
						}
					}
					outData[outBase+oh*outW+ow] = sum
				}
			}
		}
	}
	return out
}

// poolOutputSize computes the unpadded pooling output size for one
// spatial dimension: (in - pool)/stride + 1.
func poolOutputSize(in, pool, stride int) int {
	return (in-pool)/stride + 1
}

func validatePool(input *Tensor, poolSize, stride int) (batch, channels, inH, inW, outH, outW int) {
	if input.Rank() != 4 {
		panic(fmt.Sprintf("tensor: pooling input must be 4-D [N,C,H,W], got rank %d", input.Rank()))
	}
	if poolSize <= 0 {
		panic(fmt.Sprintf("tensor: pool size must be positive, got %d", poolSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("tensor: pool stride must be positive, got %d", stride))
	}
	s := input.Shape()
	batch, channels, inH, inW = s[0], s[1], s[2], s[3]
	outH = poolOutputSize(inH, poolSize, stride)
	outW = poolOutputSize(inW, poolSize, stride)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("tensor: pool output %dx%d is empty (input %dx%d, pool %d, stride %d)",
			outH, outW, inH, inW, poolSize, stride))
	}
	return
}

// MaxPool performs max pooling over input [N, C, H, W] with a square
// window and no padding. Window positions past the input edge are simply
// excluded from the candidate set.
func MaxPool(input *Tensor, poolSize, stride int) *Tensor {
	batch, channels, inH, inW, outH, outW := validatePool(input, poolSize, stride)

	out := MustNew(Shape{batch, channels, outH, outW})
	inData := input.Data()
	outData := out.Data()

	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			inBase := (n*channels + c) * inH * inW
			outBase := (n*channels + c) * outH * outW
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					maxVal := math.Inf(-1)
					for kh := 0; kh < poolSize; kh++ {
						ih := oh*stride + kh
						if ih >= inH {
							continue
						}
						for kw := 0; kw < poolSize; kw++ {
							iw := ow*stride + kw
							if iw >= inW {
								continue
							}
							if v := inData[inBase+ih*inW+iw]; v > maxVal {
								maxVal = v
							}
						}
					}
					outData[outBase+oh*outW+ow] = maxVal
				}
			}
		}
	}
	return out
}

// AvgPool performs average pooling over input [N, C, H, W] with a square
// window and no padding. Each output cell is the arithmetic mean over the
// in-bounds window cells; cells past the input edge are excluded from the
// denominator.
func AvgPool(input *Tensor, poolSize, stride int) *Tensor {
	batch, channels, inH, inW, outH, outW := validatePool(input, poolSize, stride)

	out := MustNew(Shape{batch, channels, outH, outW})
	inData := input.Data()
	outData := out.Data()

	for n := 0; n < batch; n++ {
		for c := 0; c < channels; c++ {
			inBase := (n*channels + c) * inH * inW
			outBase := (n*channels + c) * outH * outW
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					sum := 0.0
					count := 0
					for kh := 0; kh < poolSize; kh++ {
						ih := oh*stride + kh
						if ih >= inH {
							continue
						}
						for kw := 0; kw < poolSize; kw++ {
							iw := ow*stride + kw
							if iw >= inW {
								continue
							}
							sum += inData[inBase+ih*inW+iw]
							count++
						}
					}
					outData[outBase+oh*outW+ow] = sum / float64(count)
				}
			}
		}
	}
	return out
}

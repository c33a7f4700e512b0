package main

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/net"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

// Classifies synthetic 8x8 images as horizontal or vertical stripes.
func main() {
	fmt.Println("=== CNN Training Example ===")

	init := layer.NewInit(7)
	inputShape := tensor.Shape{1, 1, 8, 8}

	conv, err := layer.NewConv2D(inputShape, 4, 3, 1, true, activations.ReLU{}, init)
	if err != nil {
		log.Fatal(err)
	}
	pool, err := layer.NewMaxPool2D(conv.OutputShape(), 2, 2)
	if err != nil {
		log.Fatal(err)
	}
	flat, err := layer.NewFlatten(pool.OutputShape())
	if err != nil {
		log.Fatal(err)
	}
	head, err := layer.NewDense(flat.OutputShape()[0], 2, activations.Softmax{}, init)
	if err != nil {
		log.Fatal(err)
	}

	network := net.New()
	for _, l := range []layer.Layer{conv, pool, flat, head} {
		if err := network.Add(l); err != nil {
			log.Fatal(err)
		}
	}
	if err := network.Compile(loss.CrossEntropy{}, opt.NewAdam(0.01)); err != nil {
		log.Fatal(err)
	}
	fmt.Println(network.Summary())

	rng := rand.New(rand.NewSource(1))
	var inputs, targets []*tensor.Tensor
	for i := 0; i < 64; i++ {
		img := tensor.MustNew(inputShape)
		horizontal := i%2 == 0
		for h := 0; h < 8; h++ {
			for w := 0; w < 8; w++ {
				v := 0.1 * rng.Float64()
				if horizontal && h%2 == 0 {
					v += 1
				}
				if !horizontal && w%2 == 0 {
					v += 1
				}
				img.Set(v, 0, 0, h, w)
			}
		}
		label := tensor.MustNew(tensor.Shape{2})
		if horizontal {
			label.Set(1, 0)
		} else {
			label.Set(1, 1)
		}
		inputs = append(inputs, img)
		targets = append(targets, label)
	}

	final, err := network.Fit(inputs, targets, 30, net.NewLogger(5), net.NewEarlyStopping(5, 1e-4))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("final loss: %.6f\n", final)

	correct := 0
	for i, x := range inputs {
		pred, err := network.Predict(x)
		if err != nil {
			log.Fatal(err)
		}
		arg := 0
		if pred.Get(1) > pred.Get(0) {
			arg = 1
		}
		want := 0
		if targets[i].Get(1) == 1 {
			want = 1
		}
		if arg == want {
			correct++
		}
	}
	fmt.Printf("training accuracy: %d/%d\n", correct, len(inputs))
}

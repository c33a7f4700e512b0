package main

import (
	"fmt"
	"log"

	"github.com/tensornet-go/tensornet/internal/activations"
	"github.com/tensornet-go/tensornet/internal/layer"
	"github.com/tensornet-go/tensornet/internal/loss"
	"github.com/tensornet-go/tensornet/internal/net"
	"github.com/tensornet-go/tensornet/internal/opt"
	"github.com/tensornet-go/tensornet/internal/tensor"
)

func main() {
	fmt.Println("=== XOR Training Example ===")

	// XOR needs a hidden layer; a single perceptron cannot separate it.
	init := layer.NewInit(42)
	network, err := net.BuildMLP([]int{2, 4, 1}, activations.Tanh{}, activations.Sigmoid{}, init)
	if err != nil {
		log.Fatal(err)
	}
	if err := network.Compile(loss.MSE{}, opt.NewSGD(0.5)); err != nil {
		log.Fatal(err)
	}
	fmt.Println(network.Summary())

	rows := [][2][]float64{
		{{0, 0}, {0}},
		{{0, 1}, {1}},
		{{1, 0}, {1}},
		{{1, 1}, {0}},
	}
	var inputs, targets []*tensor.Tensor
	for _, row := range rows {
		x, _ := tensor.FromSlice(row[0], tensor.Shape{2})
		y, _ := tensor.FromSlice(row[1], tensor.Shape{1})
		inputs = append(inputs, x)
		targets = append(targets, y)
	}

	final, err := network.Fit(inputs, targets, 5000, net.NewLogger(500))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("final loss: %.6f\n", final)

	for i, x := range inputs {
		pred, err := network.Predict(x)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%v XOR -> %.4f (want %.0f)\n", x.Data(), pred.Get(0), targets[i].Get(0))
	}
}

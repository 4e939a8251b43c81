package model

import "sort"

// regressionTree is a depth-limited CART regressor fit on residuals.
// Splits greedily minimize the summed squared error of the two children.
type regressionTree struct {
	root *treeNode
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

type treeConfig struct {
	maxDepth int
	minLeaf  int
}

// fitTree builds a regression tree over the rows selected by idx.
func fitTree(x [][]float64, y []float64, idx []int, cfg treeConfig) *regressionTree {
	return &regressionTree{root: growNode(x, y, idx, 0, cfg)}
}

func growNode(x [][]float64, y []float64, idx []int, depth int, cfg treeConfig) *treeNode {
	if depth >= cfg.maxDepth || len(idx) < 2*cfg.minLeaf {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	feature, threshold, ok := bestSplit(x, y, idx, cfg.minLeaf)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growNode(x, y, left, depth+1, cfg),
		right:     growNode(x, y, right, depth+1, cfg),
	}
}

// bestSplit scans every feature for the threshold minimizing child SSE,
// using prefix sums over the rows sorted by feature value. Candidate
// thresholds are midpoints between consecutive distinct values.
func bestSplit(x [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	bestSSE := sseAt(y, idx)
	if bestSSE == 0 {
		return 0, 0, false
	}

	order := make([]int, n)
	for f := 0; f < len(x[idx[0]]); f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		var leftSum, leftSq float64
		totalSum, totalSq := sumsAt(y, idx)

		for k := 0; k < n-1; k++ {
			yi := y[order[k]]
			leftSum += yi
			leftSq += yi * yi

			v, next := x[order[k]][f], x[order[k+1]][f]
			if v == next {
				continue
			}
			leftN := k + 1
			rightN := n - leftN
			if leftN < minLeaf || rightN < minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(leftN)) +
				(rightSq - rightSum*rightSum/float64(rightN))
			if sse < bestSSE {
				bestSSE = sse
				feature = f
				threshold = v + (next-v)/2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func (t *regressionTree) predict(row []float64) float64 {
	node := t.root
	for !node.leaf && node.left != nil {
		if row[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sumsAt(y []float64, idx []int) (sum, sq float64) {
	for _, i := range idx {
		sum += y[i]
		sq += y[i] * y[i]
	}
	return sum, sq
}

func sseAt(y []float64, idx []int) float64 {
	sum, sq := sumsAt(y, idx)
	if len(idx) == 0 {
		return 0
	}
	return sq - sum*sum/float64(len(idx))
}

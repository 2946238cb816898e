package b2d

import "math"

const nullNode = -1

type treeNode struct {
	// fat bounding box
	bb       BB
	userData interface{}

	// parent doubles as the free list link
	parent         int
	child1, child2 int

	// leaf = 0, free node = -1
	height int
}

func (node *treeNode) IsLeaf() bool {
	return node.child1 == nullNode
}

// DynamicTree is a bounding volume hierarchy over fattened boxes. Nodes live
// in a growable arena and are addressed by index, so proxy ids stay stable.
// Moving a proxy only restructures the tree when its tight box escapes the
// fat one.
type DynamicTree struct {
	root     int
	nodes    []treeNode
	freeList int

	insertionCount int
	// restructures counts leaf inserts and removals.
	restructures int
}

func NewDynamicTree() *DynamicTree {
	tree := &DynamicTree{
		root:     nullNode,
		freeList: nullNode,
	}
	tree.grow(16)
	return tree
}

func (tree *DynamicTree) grow(capacity int) {
	start := len(tree.nodes)
	for i := start; i < capacity; i++ {
		tree.nodes = append(tree.nodes, treeNode{parent: i + 1, child1: nullNode, child2: nullNode, height: -1})
	}
	tree.nodes[capacity-1].parent = tree.freeList
	tree.freeList = start
}

func (tree *DynamicTree) allocateNode() int {
	if tree.freeList == nullNode {
		tree.grow(2 * len(tree.nodes))
	}

	id := tree.freeList
	node := &tree.nodes[id]
	tree.freeList = node.parent
	node.parent = nullNode
	node.child1 = nullNode
	node.child2 = nullNode
	node.height = 0
	node.userData = nil
	return id
}

func (tree *DynamicTree) freeNode(id int) {
	node := &tree.nodes[id]
	node.parent = tree.freeList
	node.height = -1
	node.userData = nil
	tree.freeList = id
}

// CreateProxy adds a leaf for bb fattened by AABBExtension.
func (tree *DynamicTree) CreateProxy(bb BB, userData interface{}) int {
	id := tree.allocateNode()
	node := &tree.nodes[id]
	node.bb = bb.Fatten(AABBExtension)
	node.userData = userData
	node.height = 0

	tree.insertLeaf(id)
	return id
}

func (tree *DynamicTree) DestroyProxy(id int) {
	if !assert(0 <= id && id < len(tree.nodes) && tree.nodes[id].height == 0, "Invalid proxy id ", id) {
		return
	}
	tree.removeLeaf(id)
	tree.freeNode(id)
}

// MoveProxy returns false when bb still fits the proxy's fat box. Otherwise
// the leaf is reinserted with a box fattened by AABBExtension and stretched
// along displacement.
func (tree *DynamicTree) MoveProxy(id int, bb BB, displacement Vector) bool {
	if !assert(0 <= id && id < len(tree.nodes) && tree.nodes[id].height == 0, "Invalid proxy id ", id) {
		return false
	}

	if tree.nodes[id].bb.Contains(bb) {
		return false
	}

	tree.removeLeaf(id)

	fat := bb.Fatten(AABBExtension).Extend(displacement.Mult(AABBMultiplier))
	tree.nodes[id].bb = fat

	tree.insertLeaf(id)
	return true
}

func (tree *DynamicTree) UserData(id int) interface{} {
	return tree.nodes[id].userData
}

func (tree *DynamicTree) FatBB(id int) BB {
	return tree.nodes[id].bb
}

// Restructures is the number of leaf inserts and removals so far.
func (tree *DynamicTree) Restructures() int {
	return tree.restructures
}

func (tree *DynamicTree) insertLeaf(leaf int) {
	tree.insertionCount++
	tree.restructures++

	if tree.root == nullNode {
		tree.root = leaf
		tree.nodes[leaf].parent = nullNode
		return
	}

	// find the best sibling
	leafBB := tree.nodes[leaf].bb
	index := tree.root
	for !tree.nodes[index].IsLeaf() {
		node := &tree.nodes[index]
		child1 := node.child1
		child2 := node.child2

		area := node.bb.Perimeter()
		combinedArea := node.bb.Merge(leafBB).Perimeter()

		// cost of creating a new parent for this node and the new leaf
		cost := 2 * combinedArea

		// minimum cost of pushing the leaf further down the tree
		inheritanceCost := 2 * (combinedArea - area)

		cost1 := tree.descendCost(child1, leafBB) + inheritanceCost
		cost2 := tree.descendCost(child2, leafBB) + inheritanceCost

		if cost < cost1 && cost < cost2 {
			break
		}

		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index

	// create a new parent
	oldParent := tree.nodes[sibling].parent
	newParent := tree.allocateNode()
	tree.nodes[newParent].parent = oldParent
	tree.nodes[newParent].bb = leafBB.Merge(tree.nodes[sibling].bb)
	tree.nodes[newParent].height = tree.nodes[sibling].height + 1

	if oldParent != nullNode {
		if tree.nodes[oldParent].child1 == sibling {
			tree.nodes[oldParent].child1 = newParent
		} else {
			tree.nodes[oldParent].child2 = newParent
		}
	} else {
		tree.root = newParent
	}
	tree.nodes[newParent].child1 = sibling
	tree.nodes[newParent].child2 = leaf
	tree.nodes[sibling].parent = newParent
	tree.nodes[leaf].parent = newParent

	tree.refit(tree.nodes[leaf].parent)
}

func (tree *DynamicTree) descendCost(child int, leafBB BB) float64 {
	node := &tree.nodes[child]
	if node.IsLeaf() {
		return leafBB.Merge(node.bb).Perimeter()
	}
	return leafBB.Merge(node.bb).Perimeter() - node.bb.Perimeter()
}

// refit walks back up the tree fixing heights and boxes.
func (tree *DynamicTree) refit(index int) {
	for index != nullNode {
		index = tree.balance(index)

		node := &tree.nodes[index]
		child1 := &tree.nodes[node.child1]
		child2 := &tree.nodes[node.child2]

		node.height = 1 + max(child1.height, child2.height)
		node.bb = child1.bb.Merge(child2.bb)

		index = node.parent
	}
}

func (tree *DynamicTree) removeLeaf(leaf int) {
	tree.restructures++

	if leaf == tree.root {
		tree.root = nullNode
		return
	}

	parent := tree.nodes[leaf].parent
	grandParent := tree.nodes[parent].parent
	sibling := tree.nodes[parent].child1
	if sibling == leaf {
		sibling = tree.nodes[parent].child2
	}

	if grandParent != nullNode {
		// destroy the parent and connect the sibling to the grand parent
		if tree.nodes[grandParent].child1 == parent {
			tree.nodes[grandParent].child1 = sibling
		} else {
			tree.nodes[grandParent].child2 = sibling
		}
		tree.nodes[sibling].parent = grandParent
		tree.freeNode(parent)

		tree.refit(grandParent)
	} else {
		tree.root = sibling
		tree.nodes[sibling].parent = nullNode
		tree.freeNode(parent)
	}
}

// balance performs a left or right rotation if node iA is imbalanced and
// returns the new root of the subtree.
func (tree *DynamicTree) balance(iA int) int {
	A := &tree.nodes[iA]
	if A.IsLeaf() || A.height < 2 {
		return iA
	}

	iB := A.child1
	iC := A.child2
	B := &tree.nodes[iB]
	C := &tree.nodes[iC]

	balance := C.height - B.height

	// rotate C up
	if balance > 1 {
		iF := C.child1
		iG := C.child2
		F := &tree.nodes[iF]
		G := &tree.nodes[iG]

		C.child1 = iA
		C.parent = A.parent
		A.parent = iC

		tree.replaceChild(C.parent, iA, iC)

		if F.height > G.height {
			C.child2 = iF
			A.child2 = iG
			G.parent = iA
			A.bb = B.bb.Merge(G.bb)
			C.bb = A.bb.Merge(F.bb)

			A.height = 1 + max(B.height, G.height)
			C.height = 1 + max(A.height, F.height)
		} else {
			C.child2 = iG
			A.child2 = iF
			F.parent = iA
			A.bb = B.bb.Merge(F.bb)
			C.bb = A.bb.Merge(G.bb)

			A.height = 1 + max(B.height, F.height)
			C.height = 1 + max(A.height, G.height)
		}

		return iC
	}

	// rotate B up
	if balance < -1 {
		iD := B.child1
		iE := B.child2
		D := &tree.nodes[iD]
		E := &tree.nodes[iE]

		B.child1 = iA
		B.parent = A.parent
		A.parent = iB

		tree.replaceChild(B.parent, iA, iB)

		if D.height > E.height {
			B.child2 = iD
			A.child1 = iE
			E.parent = iA
			A.bb = C.bb.Merge(E.bb)
			B.bb = A.bb.Merge(D.bb)

			A.height = 1 + max(C.height, E.height)
			B.height = 1 + max(A.height, D.height)
		} else {
			B.child2 = iE
			A.child1 = iD
			D.parent = iA
			A.bb = C.bb.Merge(D.bb)
			B.bb = A.bb.Merge(E.bb)

			A.height = 1 + max(C.height, D.height)
			B.height = 1 + max(A.height, E.height)
		}

		return iB
	}

	return iA
}

func (tree *DynamicTree) replaceChild(parent, oldChild, newChild int) {
	if parent == nullNode {
		tree.root = newChild
		return
	}
	if tree.nodes[parent].child1 == oldChild {
		tree.nodes[parent].child1 = newChild
	} else {
		assert(tree.nodes[parent].child2 == oldChild, "Tree parent link is broken")
		tree.nodes[parent].child2 = newChild
	}
}

// Height of the tree, 0 for a single leaf.
func (tree *DynamicTree) Height() int {
	if tree.root == nullNode {
		return 0
	}
	return tree.nodes[tree.root].height
}

// MaxBalance is the largest height difference between two siblings.
func (tree *DynamicTree) MaxBalance() int {
	maxBalance := 0
	for i := range tree.nodes {
		node := &tree.nodes[i]
		if node.height <= 1 {
			continue
		}
		balance := tree.nodes[node.child2].height - tree.nodes[node.child1].height
		if balance < 0 {
			balance = -balance
		}
		maxBalance = max(maxBalance, balance)
	}
	return maxBalance
}

// AreaRatio is the total perimeter of internal nodes over the root perimeter.
func (tree *DynamicTree) AreaRatio() float64 {
	if tree.root == nullNode {
		return 0
	}
	rootArea := tree.nodes[tree.root].bb.Perimeter()

	totalArea := 0.0
	for i := range tree.nodes {
		if tree.nodes[i].height < 0 {
			continue
		}
		totalArea += tree.nodes[i].bb.Perimeter()
	}
	return totalArea / rootArea
}

// Query calls f for every proxy whose fat box overlaps bb until f returns false.
func (tree *DynamicTree) Query(bb BB, f func(proxyId int) bool) {
	if tree.root == nullNode {
		return
	}
	stack := make([]int, 0, 64)
	stack = append(stack, tree.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &tree.nodes[id]
		if !node.bb.Intersects(bb) {
			continue
		}
		if node.IsLeaf() {
			if !f(id) {
				return
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// RayCastFunc clips the ray for a proxy. It returns 0 to stop, the hit
// fraction to shorten the ray, a negative value to ignore the proxy or
// maxFraction to keep going unchanged.
type RayCastFunc func(a, b Vector, maxFraction float64, proxyId int) float64

func (tree *DynamicTree) RayCast(a, b Vector, maxFraction float64, f RayCastFunc) {
	if tree.root == nullNode {
		return
	}

	r := b.Sub(a)
	if !assert(r.LengthSq() > 0, "Ray cast with zero length") {
		return
	}
	r = r.Normalize()

	// separating axis for the segment
	v := r.Perp()
	absV := v.Abs()

	segmentBB := func() BB {
		t := a.Lerp(b, maxFraction)
		return BB{math.Min(a.X, t.X), math.Min(a.Y, t.Y), math.Max(a.X, t.X), math.Max(a.Y, t.Y)}
	}
	bounds := segmentBB()

	stack := make([]int, 0, 64)
	stack = append(stack, tree.root)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &tree.nodes[id]
		if !node.bb.Intersects(bounds) {
			continue
		}

		// |dot(v, a - c)| > dot(|v|, h)
		c := node.bb.Center()
		h := Vector{(node.bb.R - node.bb.L) * 0.5, (node.bb.T - node.bb.B) * 0.5}
		if math.Abs(v.Dot(a.Sub(c)))-absV.Dot(h) > 0 {
			continue
		}

		if node.IsLeaf() {
			value := f(a, b, maxFraction, id)
			if value == 0 {
				return
			}
			if value > 0 {
				maxFraction = value
				bounds = segmentBB()
			}
		} else {
			stack = append(stack, node.child1, node.child2)
		}
	}
}

// Validate checks the structure and boxes of the whole tree.
func (tree *DynamicTree) Validate() bool {
	if tree.root != nullNode && tree.nodes[tree.root].parent != nullNode {
		return false
	}
	if !tree.validateNode(tree.root) {
		return false
	}

	freeCount := 0
	for free := tree.freeList; free != nullNode; free = tree.nodes[free].parent {
		if free < 0 || free >= len(tree.nodes) {
			return false
		}
		freeCount++
	}
	return tree.nodeCount(tree.root)+freeCount == len(tree.nodes)
}

func (tree *DynamicTree) validateNode(index int) bool {
	if index == nullNode {
		return true
	}
	node := &tree.nodes[index]
	if node.IsLeaf() {
		return node.child2 == nullNode && node.height == 0
	}

	child1 := &tree.nodes[node.child1]
	child2 := &tree.nodes[node.child2]
	if child1.parent != index || child2.parent != index {
		return false
	}
	if node.height != 1+max(child1.height, child2.height) {
		return false
	}
	if !node.bb.Contains(child1.bb) || !node.bb.Contains(child2.bb) {
		return false
	}
	return tree.validateNode(node.child1) && tree.validateNode(node.child2)
}

func (tree *DynamicTree) nodeCount(index int) int {
	if index == nullNode {
		return 0
	}
	node := &tree.nodes[index]
	if node.IsLeaf() {
		return 1
	}
	return 1 + tree.nodeCount(node.child1) + tree.nodeCount(node.child2)
}

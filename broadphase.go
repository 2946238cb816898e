package b2d

import (
	"cmp"
	"slices"
)

type proxyPair struct {
	proxyIdA, proxyIdB int
}

// BroadPhase buffers moved proxies and reports the new overlapping pairs
// they produce. Each pair is reported once per update with the lower proxy
// id first.
type BroadPhase struct {
	tree       *DynamicTree
	proxyCount int

	moveBuffer []int
	pairBuffer []proxyPair

	queryProxyId int
}

func NewBroadPhase() *BroadPhase {
	return &BroadPhase{
		tree:         NewDynamicTree(),
		moveBuffer:   make([]int, 0, 16),
		pairBuffer:   make([]proxyPair, 0, 16),
		queryProxyId: nullNode,
	}
}

func (bp *BroadPhase) CreateProxy(bb BB, userData interface{}) int {
	proxyId := bp.tree.CreateProxy(bb, userData)
	bp.proxyCount++
	bp.bufferMove(proxyId)
	return proxyId
}

func (bp *BroadPhase) DestroyProxy(proxyId int) {
	bp.unbufferMove(proxyId)
	bp.proxyCount--
	bp.tree.DestroyProxy(proxyId)
}

// MoveProxy only queues the proxy for pair search when the tree had to
// restructure, since a proxy inside its fat box can't have new pairs.
func (bp *BroadPhase) MoveProxy(proxyId int, bb BB, displacement Vector) {
	if bp.tree.MoveProxy(proxyId, bb, displacement) {
		bp.bufferMove(proxyId)
	}
	assert(bp.tree.FatBB(proxyId).Contains(bb), "Fat bounding box does not contain the shape")
}

// TouchProxy queues the proxy for pair search on the next update.
func (bp *BroadPhase) TouchProxy(proxyId int) {
	bp.bufferMove(proxyId)
}

func (bp *BroadPhase) FatBB(proxyId int) BB {
	return bp.tree.FatBB(proxyId)
}

func (bp *BroadPhase) UserData(proxyId int) interface{} {
	return bp.tree.UserData(proxyId)
}

func (bp *BroadPhase) TestOverlap(proxyIdA, proxyIdB int) bool {
	return bp.tree.FatBB(proxyIdA).Intersects(bp.tree.FatBB(proxyIdB))
}

func (bp *BroadPhase) ProxyCount() int {
	return bp.proxyCount
}

func (bp *BroadPhase) TreeHeight() int {
	return bp.tree.Height()
}

func (bp *BroadPhase) Tree() *DynamicTree {
	return bp.tree
}

func (bp *BroadPhase) Query(bb BB, f func(proxyId int) bool) {
	bp.tree.Query(bb, f)
}

func (bp *BroadPhase) RayCast(a, b Vector, maxFraction float64, f RayCastFunc) {
	bp.tree.RayCast(a, b, maxFraction, f)
}

// UpdatePairs reports the new pairs of every moved proxy to addPair and
// empties the move buffer.
func (bp *BroadPhase) UpdatePairs(addPair func(userDataA, userDataB interface{})) {
	bp.pairBuffer = bp.pairBuffer[:0]

	for _, queryProxyId := range bp.moveBuffer {
		if queryProxyId == nullNode {
			continue
		}
		bp.queryProxyId = queryProxyId
		bp.tree.Query(bp.tree.FatBB(queryProxyId), bp.queryCallback)
	}
	bp.moveBuffer = bp.moveBuffer[:0]
	bp.queryProxyId = nullNode

	slices.SortFunc(bp.pairBuffer, func(a, b proxyPair) int {
		if c := cmp.Compare(a.proxyIdA, b.proxyIdA); c != 0 {
			return c
		}
		return cmp.Compare(a.proxyIdB, b.proxyIdB)
	})

	for i := 0; i < len(bp.pairBuffer); {
		primary := bp.pairBuffer[i]
		addPair(bp.tree.UserData(primary.proxyIdA), bp.tree.UserData(primary.proxyIdB))
		i++

		// skip duplicates
		for i < len(bp.pairBuffer) && bp.pairBuffer[i] == primary {
			i++
		}
	}
}

func (bp *BroadPhase) queryCallback(proxyId int) bool {
	// a proxy can't form a pair with itself
	if proxyId == bp.queryProxyId {
		return true
	}

	bp.pairBuffer = append(bp.pairBuffer, proxyPair{
		proxyIdA: min(proxyId, bp.queryProxyId),
		proxyIdB: max(proxyId, bp.queryProxyId),
	})
	return true
}

func (bp *BroadPhase) bufferMove(proxyId int) {
	bp.moveBuffer = append(bp.moveBuffer, proxyId)
}

func (bp *BroadPhase) unbufferMove(proxyId int) {
	for i, id := range bp.moveBuffer {
		if id == proxyId {
			bp.moveBuffer[i] = nullNode
		}
	}
}

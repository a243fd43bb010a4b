package reconciler

// matchTable pairs source record IDs with target record IDs.
// Both directions are kept in step so a record can only ever have one
// partner, and A is matched to B exactly when B is matched to A.
type matchTable struct {
	sourceToTarget map[string]string
	targetToSource map[string]string
}

func newMatchTable() *matchTable {
	return &matchTable{
		sourceToTarget: make(map[string]string),
		targetToSource: make(map[string]string),
	}
}

// link pairs sourceID with targetID, dropping any previous partner of either
func (t *matchTable) link(sourceID, targetID string) {
	t.unlinkSource(sourceID)
	t.unlinkTarget(targetID)
	t.sourceToTarget[sourceID] = targetID
	t.targetToSource[targetID] = sourceID
}

// unlinkSource removes the pair containing sourceID and returns the former partner
func (t *matchTable) unlinkSource(sourceID string) (string, bool) {
	targetID, ok := t.sourceToTarget[sourceID]
	if !ok {
		return "", false
	}
	delete(t.sourceToTarget, sourceID)
	delete(t.targetToSource, targetID)
	return targetID, true
}

// unlinkTarget removes the pair containing targetID and returns the former partner
func (t *matchTable) unlinkTarget(targetID string) (string, bool) {
	sourceID, ok := t.targetToSource[targetID]
	if !ok {
		return "", false
	}
	delete(t.targetToSource, targetID)
	delete(t.sourceToTarget, sourceID)
	return sourceID, true
}

func (t *matchTable) targetOf(sourceID string) (string, bool) {
	id, ok := t.sourceToTarget[sourceID]
	return id, ok
}

func (t *matchTable) sourceOf(targetID string) (string, bool) {
	id, ok := t.targetToSource[targetID]
	return id, ok
}

func (t *matchTable) len() int {
	return len(t.sourceToTarget)
}

package evm

import "github.com/taikochain/zkevm-specs/internal/zkevm-specs/fp"

// ReversionInfo tracks where a call's reversion mirror rows live. When the
// call is not persistent, every reversible state write is mirrored at a
// counter counting down from RwCounterEndOfReversion, so that replaying
// the mirror rows in order undoes the writes.
type ReversionInfo struct {
	RwCounterEndOfReversion fp.FQ
	IsPersistent            fp.FQ
	ReversibleWriteCounter  fp.FQ
}

// RwCounterOfReversion hands out the next mirror-row counter. Mirror rows
// are allocated backwards: the first reversible write of the call reverts
// last.
func (r *ReversionInfo) RwCounterOfReversion() fp.FQ {
	counter := r.RwCounterEndOfReversion.Sub(r.ReversibleWriteCounter)
	r.ReversibleWriteCounter = r.ReversibleWriteCounter.Add(fp.NewFQ(1))
	return counter
}

// ReversionInfo reads a call's reversion bookkeeping from its call
// context. A nil callID addresses the current call, whose reversible
// writes so far are carried in the step state; another call starts at
// zero.
func (in *Instruction) ReversionInfo(callID *fp.FQ) (*ReversionInfo, error) {
	rwCounterEndOfReversion, err := in.CallContextLookup(CallContextFieldTagRwCounterEndOfReversion, RWRead, callID)
	if err != nil {
		return nil, err
	}
	isPersistent, err := in.CallContextLookup(CallContextFieldTagIsPersistent, RWRead, callID)
	if err != nil {
		return nil, err
	}
	reversibleWriteCounter := fp.NewFQ(0)
	if callID == nil {
		reversibleWriteCounter = in.curr.ReversibleWriteCounter
	}
	return &ReversionInfo{
		RwCounterEndOfReversion: rwCounterEndOfReversion,
		IsPersistent:            isPersistent,
		ReversibleWriteCounter:  reversibleWriteCounter,
	}, nil
}

// StateRead reads a reversible state row.
func (in *Instruction) StateRead(tag RWTableTag, p RWLookupParams) (RWTableRow, error) {
	if !tag.WriteWithReversion() {
		panic("StateRead on non-reversible tag")
	}
	return in.RWLookup(RWRead, tag, p)
}

// StateWrite performs a reversible state write. When reversionInfo marks
// the call as not persistent, the write is additionally matched against a
// mirror row with value and value_prev swapped at the call's reversion
// counter.
func (in *Instruction) StateWrite(tag RWTableTag, p RWLookupParams, reversionInfo *ReversionInfo) (RWTableRow, error) {
	if !tag.WriteWithReversion() {
		panic("StateWrite on non-reversible tag")
	}
	row, err := in.RWLookup(RWWrite, tag, p)
	if err != nil {
		return RWTableRow{}, err
	}
	if reversionInfo != nil && reversionInfo.IsPersistent.IsZero() {
		counter := reversionInfo.RwCounterOfReversion()
		_, err := in.RWLookup(RWWrite, tag, RWLookupParams{
			ID:         &row.ID,
			Address:    &row.Address,
			FieldTag:   &row.FieldTag,
			StorageKey: &row.StorageKey,
			Value:      &row.ValuePrev,
			ValuePrev:  &row.Value,
			Aux0:       &row.Aux0,
			RwCounter:  &counter,
		})
		if err != nil {
			return RWTableRow{}, err
		}
	}
	return row, nil
}

package domain

// DiscrepancyKind classifies one unit of drift between the registry and the
// live forum.
type DiscrepancyKind string

const (
	// KindOrphanRegistryEntry: registry row whose thread no longer exists live.
	KindOrphanRegistryEntry DiscrepancyKind = "orphan_registry_entry"
	// KindOrphanLiveThread: live thread with no registry row.
	KindOrphanLiveThread DiscrepancyKind = "orphan_live_thread"
	// KindTagMismatch: live thread tags differ from the registry's tag set.
	KindTagMismatch DiscrepancyKind = "tag_mismatch"
	// KindMissingMetadata: registry row lacking required metadata fields.
	KindMissingMetadata DiscrepancyKind = "missing_metadata"
)

// RepairAction is the corrective action proposed for a discrepancy.
type RepairAction string

const (
	ActionDeleteRegistryEntry RepairAction = "delete_registry_entry"
	ActionRelinkThread        RepairAction = "relink_thread"
	ActionResyncTags          RepairAction = "resync_tags"
	ActionRefetchMetadata     RepairAction = "refetch_metadata"
)

// Authority names which side wins for a discrepancy kind.
type Authority string

const (
	AuthorityLiveForum Authority = "live_forum"
	AuthorityRegistry  Authority = "registry"
)

// resolution is one row of the kind to (authority, action) table.
// Adding a drift kind is one line here plus its executor branch.
type resolution struct {
	Authority Authority
	Action    RepairAction
}

var resolutions = map[DiscrepancyKind]resolution{
	KindOrphanRegistryEntry: {AuthorityLiveForum, ActionDeleteRegistryEntry},
	KindOrphanLiveThread:    {AuthorityRegistry, ActionRelinkThread},
	KindTagMismatch:         {AuthorityRegistry, ActionResyncTags},
	KindMissingMetadata:     {AuthorityRegistry, ActionRefetchMetadata},
}

// AuthorityFor returns the authoritative side for a discrepancy kind.
func AuthorityFor(kind DiscrepancyKind) Authority {
	return resolutions[kind].Authority
}

// ProposedAction returns the corrective action for a discrepancy kind.
func ProposedAction(kind DiscrepancyKind) RepairAction {
	return resolutions[kind].Action
}

// Discrepancy is a classified unit of drift with enough context to repair it
// without re-scanning. Transient: never persisted.
type Discrepancy struct {
	Kind        DiscrepancyKind
	WorkspaceID string

	// WorldID is set when the subject world is known. For orphan live
	// threads it is the id recovered from thread content, empty when
	// unrecoverable.
	WorldID  string
	ThreadID string

	// RegistryTagIDs / LiveTagIDs are populated for tag mismatches.
	RegistryTagIDs []string
	LiveTagIDs     []string

	// ManualOnly marks orphan live threads whose world id could not be
	// recovered; they need manual removal, not an automatic repair.
	ManualOnly bool
}

// Action returns the proposed corrective action for this discrepancy.
func (d Discrepancy) Action() RepairAction {
	return ProposedAction(d.Kind)
}

// SubjectKey identifies the row/thread a discrepancy concerns; used for
// per-subject locking during repair.
func (d Discrepancy) SubjectKey() string {
	if d.WorldID != "" {
		return d.WorkspaceID + "/" + d.WorldID
	}
	return d.WorkspaceID + "/thread/" + d.ThreadID
}

// RepairStatus is the terminal state of one repair attempt.
type RepairStatus string

const (
	RepairSucceeded RepairStatus = "succeeded"
	RepairFailed    RepairStatus = "failed"
	RepairNoOp      RepairStatus = "no_op"
)

// RepairOutcome reports the result of repairing one discrepancy.
// Failures are values, not errors: one failed item never aborts a batch.
type RepairOutcome struct {
	Discrepancy Discrepancy
	Status      RepairStatus
	Reason      string
}

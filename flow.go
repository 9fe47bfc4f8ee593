package ticketflow

// BuildTicketGraph wires the intake-to-commit workflow:
//
//	intake {classify, retrieve_context}
//	  -> extract -> context_gate
//	  -> reviews {biz, qa, design} -> conflict_detect -> synthesize
//	  -> draft -> approval -> commit_to_jira
//
// The gate routes aborted runs straight to draft, skipping the review
// path, and approval suspends until a human decision lands.
func BuildTicketGraph(cfg NodeConfig) (*CompiledGraph, error) {
	g := NewGraph()

	g.AddParallel(NodeIntake,
		Branch{Name: NodeClassify, Run: ClassifyNode(cfg), Merge: mergeClassification},
		Branch{Name: NodeRetrieve, Run: RetrieveContextNode(cfg), Merge: mergeRetrieved},
	)
	g.AddNode(NodeExtract, ExtractNode(cfg))
	g.AddNode(NodeContextGate, ContextGateNode(cfg))
	g.AddParallel(NodeReviews,
		Branch{Name: NodeBizReview, Run: BizReviewNode(cfg), Merge: mergeBizReview},
		Branch{Name: NodeQAReview, Run: QAReviewNode(cfg), Merge: mergeQAReview},
		Branch{Name: NodeDesignReview, Run: DesignReviewNode(cfg), Merge: mergeDesignReview},
	)
	g.AddNode(NodeConflictDetect, ConflictDetectNode(cfg))
	g.AddNode(NodeSynthesize, SynthesizeNode(cfg))
	g.AddNode(NodeDraft, DraftNode(cfg))
	g.AddNode(NodeApproval, ApprovalNode(cfg))
	g.AddNode(NodeCommit, CommitNode(cfg))

	g.SetEntry(NodeIntake)
	g.AddEdge(NodeIntake, NodeExtract)
	g.AddEdge(NodeExtract, NodeContextGate)
	g.AddConditionalEdge(NodeContextGate, GateRouter)
	g.AddEdge(NodeReviews, NodeConflictDetect)
	g.AddEdge(NodeConflictDetect, NodeSynthesize)
	g.AddEdge(NodeSynthesize, NodeDraft)
	g.AddEdge(NodeDraft, NodeApproval)
	g.AddConditionalEdge(NodeApproval, ApprovalRouter)
	g.AddEdge(NodeCommit, END)

	return g.Compile()
}

// Intake branch merges. Classification and retrieved context live in
// disjoint state fields.

func mergeClassification(base, branch State) State {
	base.Classification = branch.Classification
	return base
}

func mergeRetrieved(base, branch State) State {
	base.RetrievedContext = branch.RetrievedContext
	return base
}

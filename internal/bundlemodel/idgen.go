package bundlemodel

import "github.com/google/uuid"

// Prefixed id generators. Using a short, greppable prefix ahead of a uuid4
// keeps log lines and exported JSON self-describing without a registry.

func NewBundleID() string { return "bnd_" + uuid.NewString() }

func NewCoalitionID() string { return "col_" + uuid.NewString() }

func NewBlockID() string { return "blk_" + uuid.NewString() }

func NewChallengeID() string { return "chl_" + uuid.NewString() }

func NewCounterID() string { return "ctr_" + uuid.NewString() }

func NewScenarioID() string { return "scn_" + uuid.NewString() }

package config

// Default returns the configuration with every numeric default named in
// spec.md §4, and no static rules / schema tables loaded — callers that
// need rule data call Load with a directory of YAML files and the
// defaults here are overlaid underneath whatever the files specify.
func Default() *Config {
	return &Config{
		EntityTypes:     nil,
		RelationTypes:   []string{"Affect", "Cause", "DependOn", "TemporalBefore", "TemporalAfter", "CorrelateWith", "PartOf"},
		AliasDictionary: map[string]string{},
		ValidationSchema: ValidationSchema{
			Thresholds: ValidationThresholds{PersonalCandidate: 0.35, DomainCandidate: 0.55},
			Weights:    ValidationWeights{Student: 0.4, Sign: 0.3, Semantic: 0.3},
		},
		StaticDomain: StaticDomain{},
		Intake: IntakeTuning{
			MinFragmentLength: 10,
			OpinionMarkers:    []string{"i think", "i feel", "in my opinion", "i believe"},
		},
		DynamicUpdate: DynamicUpdateTuning{
			DecayDays: 30, DecayRate: 0.98, ConfIncreaseRate: 0.05, ConfDecreaseRate: 0.08,
			InitialDomainConf: 0.5,
		},
		Conflict: ConflictTuning{MinEvidenceRatio: 3, PathDepthLimit: 3, DriftConfFloor: 0.4},
		Drift: DriftWeights{
			Conflict: 0.3, Opposite: 0.25, Decay: 0.25, Semantic: 0.2,
			FlagThreshold: 0.6, QAThreshold: 0.7, MinTotalSample: 5,
		},
		PCS: PCSWeights{P1: 0.25, P2: 0.3, P3: 0.2, P4: 0.25},
		PersonalPatterns: PersonalPatterns{
			Emotional:  []string{"i feel", "makes me", "i'm scared", "i'm happy"},
			Hypothesis: []string{"maybe", "perhaps", "might be", "could be"},
			Inference:  []string{"so it seems", "this suggests", "probably because"},
			Opinion:    []string{"i think", "i believe", "in my opinion"},
		},
		Promotion: PromotionTuning{
			PCSWeight: 0.3, ConsistencyWeight: 0.3, DomainGapWeight: 0.2, TimeWeight: 0.2,
			PromotionThreshold: 0.8, MinOccurrenceForPromo: 3,
		},
		Reasoning: ReasoningTuning{
			MaxPathLength: 4, MaxPaths: 10, MinDomainPaths: 3,
			GoldBonus: 1.2, PersonalDiscount: 0.3, DirectionEpsilon: 0.05,
		},
	}
}

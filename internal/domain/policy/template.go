package policy

// Template is a design-time policy blueprint. Creating a policy from a
// template snapshots its sections as version "1.0".
type Template struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Type           PolicyType        `json:"type"`
	Sections       map[string]string `json:"sections"`
	Frameworks     []string          `json:"frameworks"`
	RequiredLevels []ApprovalLevel   `json:"required_levels"`
}

// BuiltinTemplates returns the fixed template catalog.
func BuiltinTemplates() map[string]*Template {
	return map[string]*Template{
		"aacsb_governance": {
			ID:   "aacsb_governance",
			Name: "AACSB Governance Policy",
			Type: TypeGovernance,
			Sections: map[string]string{
				"purpose":          "Define the governance structure supporting AACSB accreditation.",
				"scope":            "Applies to all academic units participating in accredited programs.",
				"responsibilities": "The dean's office maintains accreditation evidence; department chairs certify curricula annually.",
				"review":           "Reviewed annually ahead of the continuous improvement report.",
			},
			Frameworks:     []string{"AACSB"},
			RequiredLevels: []ApprovalLevel{LevelAdministration, LevelBoard},
		},
		"wasc_assessment": {
			ID:   "wasc_assessment",
			Name: "WASC Assessment Policy",
			Type: TypeAcademic,
			Sections: map[string]string{
				"purpose":  "Establish learning outcome assessment practices required by WASC.",
				"scope":    "All degree programs.",
				"process":  "Program-level outcomes assessed on a two-year cycle with published rubrics.",
				"evidence": "Assessment reports are filed with the accreditation liaison officer.",
			},
			Frameworks:     []string{"WASC"},
			RequiredLevels: []ApprovalLevel{LevelFacultySenate, LevelAdministration},
		},
		"data_governance": {
			ID:   "data_governance",
			Name: "Institutional Data Governance Policy",
			Type: TypeAdministrative,
			Sections: map[string]string{
				"purpose":        "Define stewardship of institutional data used in compliance reporting.",
				"classification": "Data is classified as public, internal, or restricted.",
				"retention":      "Compliance evidence is retained for one full accreditation cycle.",
			},
			RequiredLevels: []ApprovalLevel{LevelAdministration},
		},
	}
}

// RequiredLevelsForType returns the default approval levels a policy of
// the given type must collect before promotion to approved. Templates
// may override this per policy.
func RequiredLevelsForType(t PolicyType) []ApprovalLevel {
	switch t {
	case TypeGovernance:
		return []ApprovalLevel{LevelAdministration, LevelBoard}
	case TypeAcademic:
		return []ApprovalLevel{LevelFacultySenate, LevelAdministration}
	case TypeCompliance:
		return []ApprovalLevel{LevelAdministration}
	default:
		return []ApprovalLevel{LevelDepartment}
	}
}

package constants

import "time"

const (
	AppName = "studylog"

	// DateFormat is the on-disk format for every calendar date column.
	DateFormat = "2006-01-02"
	// TimestampFormat is used for mock_test_results.timestamp.
	TimestampFormat = time.RFC3339

	DefaultConfigDir   = "~/.config/studylog"
	DefaultDBFile      = "studylog.db"
	DefaultKeyringUser = "db-connection"
	EnvPrefix          = "STUDYLOG_"

	DefaultCacheTTL     = 5 * time.Minute
	DefaultUpcomingDays = 7

	// Per-install owner tags stamped on every mock test result.
	DefaultUserID          int64 = 1
	DefaultNeuralSignature       = "rmj"

	// MinPredictionHistory is the number of scored mock tests needed before
	// score prediction is attempted.
	MinPredictionHistory = 5
	PredictionSeed       = 42
	PredictionTrees      = 50
)

// Table names.
const (
	TablePracticeLogs = "dpp_log"
	TablePlannerTasks = "study_tasks"
	TableMockTests    = "mock_test_results"
)

// Subjects offered for practice logs and planner tasks.
var Subjects = []string{"Physics", "Chemistry", "Maths", "Biology", "Others"}

// KnowledgeDomains is the fixed catalog a mock test result's domain must come from.
var KnowledgeDomains = []string{
	"Physics: Mechanics (Kinematics, Laws of Motion, Work, Energy, Power, Rotational Motion)",
	"Physics: Thermodynamics & Kinetic Theory",
	"Physics: Electrodynamics (Electrostatics, Current, Magnetism, EMI, AC)",
	"Physics: Optics (Ray Optics, Wave Optics)",
	"Physics: Modern Physics (Dual Nature, Atoms, Nuclei, Semiconductors)",
	"Chemistry: Physical Chemistry (Stoichiometry, States of Matter, Thermodynamics, Equilibrium, Electrochemistry, Kinetics)",
	"Chemistry: Inorganic Chemistry (Periodic Table, Bonding, S/P/D/F-Block, Coordination Compounds, Metallurgy)",
	"Chemistry: Organic Chemistry (Basic Principles, Hydrocarbons, Oxygen/Nitrogen/Halogen Compounds, Biomolecules, Polymers)",
	"Mathematics: Algebra (Complex Numbers, Quadratic Eq, Seq & Series, Perm & Comb, Binomial, Matrices, Determinants)",
	"Mathematics: Calculus (Functions, Limits, Continuity, Differentiability, AOD, Integrals, Diff Eq, Area)",
	"Mathematics: Coordinate Geometry (Straight Lines, Circles, Conics)",
	"Mathematics: Vectors & 3D Geometry",
	"Mathematics: Probability & Statistics",
	"Biology: Zoology (Human Physiology, Genetics, Evolution, Ecology)",
	"Biology: Botany (Plant Physiology, Reproduction, Taxonomy, Cell Biology)",
	"General Aptitude & Logical Reasoning (IAT/NEST Specific)",
	"Environmental Science & General Knowledge (NEST Specific)",
	"Interdisciplinary Synthesis & Problem-Solving",
	"Exam Strategy & Time Management",
	"Mock Test: JEE Mains (Full Syllabus)",
	"Mock Test: JEE Advanced (Paper 1)",
	"Mock Test: JEE Advanced (Paper 2)",
	"Mock Test: IAT (Full Syllabus)",
	"Mock Test: NEST (Full Syllabus)",
	"Mock Test: Subject-Specific (Specify in Feedback)",
}

// IsKnowledgeDomain reports whether d is in KnowledgeDomains.
func IsKnowledgeDomain(d string) bool {
	for _, k := range KnowledgeDomains {
		if k == d {
			return true
		}
	}
	return false
}

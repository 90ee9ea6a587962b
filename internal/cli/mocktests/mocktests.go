package mocktests

import (
	stderrors "errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/export"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/predict"
	"github.com/julianstephens/studylog/internal/storage"
)

type MockAddCmd struct {
	TestName   string   `arg:"" help:"Name of the test paper."`
	Exam       string   `short:"e" help:"Exam type." enum:"JEE Mains,JEE Advanced,IAT,NEST,Other" default:"JEE Mains"`
	Domain     string   `help:"Knowledge domain: catalog number, name or a unique fragment (see 'mock domains')." required:""`
	Date       string   `short:"d" help:"Assessment date (YYYY-MM-DD). Defaults to today."`
	Questions  int      `short:"q" help:"Total questions."`
	Attempted  int      `help:"Questions attempted."`
	Correct    int      `help:"Correct answers."`
	Wrong      int      `help:"Wrong answers."`
	Physics    *float64 `help:"Physics section score."`
	Chemistry  *float64 `help:"Chemistry section score."`
	Maths      *float64 `help:"Maths section score."`
	Biology    *float64 `help:"Biology section score."`
	Total      float64  `short:"s" help:"Total score." required:""`
	Max        float64  `help:"Maximum possible score. Defaults to the exam type's maximum."`
	Percentile float64  `help:"Percentile (0-100)."`
	Rank       int      `help:"Rank."`
	Target     float64  `help:"Target score."`
	Difficulty string   `help:"Perceived difficulty." enum:"Easy,Medium,Hard,Very Hard" default:"Medium"`
	Time       int      `short:"t" help:"Time taken in minutes."`
	Feedback   string   `help:"Free-form feedback."`
}

func (c *MockAddCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Today()
	}
	id, err := ctx.Mocks.Insert(models.MockTestResult{
		AssessmentDate:   date,
		ExamType:         models.ExamType(c.Exam),
		TestName:         c.TestName,
		Domain:           resolveDomain(c.Domain),
		TotalQuestions:   c.Questions,
		Attempted:        c.Attempted,
		Correct:          c.Correct,
		Wrong:            c.Wrong,
		PhysicsScore:     c.Physics,
		ChemistryScore:   c.Chemistry,
		MathsScore:       c.Maths,
		BiologyScore:     c.Biology,
		TotalScore:       c.Total,
		MaxScorePossible: c.Max,
		Percentile:       c.Percentile,
		Rank:             c.Rank,
		TargetScore:      c.Target,
		Difficulty:       models.Difficulty(c.Difficulty),
		TimeTakenMin:     c.Time,
		Feedback:         c.Feedback,
	})
	if err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Logged %s (ID: %s)", c.TestName, shortID(id))
	return nil
}

type MockSetCmd struct {
	ID    string `arg:"" help:"Mock test ID or unique prefix."`
	Field string `arg:"" help:"Column to change, e.g. total_score or feedback."`
	Value string `arg:"" help:"New value. An empty string clears optional subject scores."`
}

func (c *MockSetCmd) Run(ctx *cli.Context) error {
	id, err := resolveID(ctx, c.ID)
	if err != nil {
		return err
	}
	value := c.Value
	if c.Field == "domain" {
		value = resolveDomain(value)
	}
	if err := ctx.Mocks.UpdateField(id, c.Field, value); err != nil {
		if stderrors.Is(err, errors.ErrFieldNotAllowed) {
			return fmt.Errorf("%w (allowed: %s)", err, strings.Join(storage.UpdatableFields(), ", "))
		}
		return ctx.Rejected(err)
	}
	ctx.Success("Set %s on %s", c.Field, shortID(id))
	return nil
}

type MockDeleteCmd struct {
	ID  string `arg:"" help:"Mock test ID or unique prefix."`
	Yes bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *MockDeleteCmd) Run(ctx *cli.Context) error {
	id, err := resolveID(ctx, c.ID)
	if err != nil {
		return err
	}
	m, err := ctx.Mocks.Get(id)
	if err != nil {
		return err
	}
	ok, err := ctx.Confirmed(c.Yes, "Delete mock test?", fmt.Sprintf("%s on %s", m.TestName, m.AssessmentDate))
	if err != nil || !ok {
		return err
	}
	if err := ctx.Mocks.Delete(id); err != nil {
		return fmt.Errorf("failed to delete mock test: %w", err)
	}
	ctx.Success("Deleted %s (ID: %s)", m.TestName, shortID(id))
	return nil
}

type MockListCmd struct {
	Limit int  `short:"l" help:"Show at most this many rows (0 for all)." default:"0"`
	All   bool `help:"Include results from every user id."`
}

func (c *MockListCmd) Run(ctx *cli.Context) error {
	scored, err := c.load(ctx)
	if err != nil {
		return err
	}
	if len(scored) == 0 {
		ctx.Println("No mock tests found")
		return nil
	}
	if c.Limit > 0 && len(scored) > c.Limit {
		scored = scored[:c.Limit]
	}
	rows := make([][]string, len(scored))
	for i, s := range scored {
		rows[i] = []string{
			shortID(s.ID), s.AssessmentDate, string(s.ExamType), s.TestName, s.Domain,
			cli.Num(s.TotalScore) + "/" + cli.Num(s.MaxScorePossible), cli.Percent(s.PercentageScore),
			cli.Percent(s.AccuracyQ), strconv.Itoa(s.Unattempted), string(s.Difficulty),
		}
	}
	ctx.Println(cli.Table([]string{"ID", "Date", "Exam", "Test", "Domain", "Score", "%", "Accuracy", "Skipped", "Difficulty"}, rows))
	return nil
}

func (c *MockListCmd) load(ctx *cli.Context) ([]analytics.ScoredMockTest, error) {
	f := models.MockFilter{UserID: ctx.Mocks.Owner().UserID}
	if c.All {
		f = models.MockFilter{}
	}
	results, err := ctx.Mocks.LoadAll(f)
	if err != nil {
		return nil, err
	}
	return analytics.ScoreMockTests(results), nil
}

type MockStatsCmd struct{}

func (c *MockStatsCmd) Run(ctx *cli.Context) error {
	results, err := ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
	if err != nil {
		return err
	}
	if len(results) == 0 {
		ctx.Println("No mock tests yet")
		return nil
	}
	scored := analytics.ScoreMockTests(results)
	PrintStats(ctx, scored)

	ctx.Title("By exam type")
	ctx.Println(groupTable("Exam", "Avg percentile", analytics.MockByExamType(scored)))

	if subjects := analytics.SubjectPercentages(scored); len(subjects) > 0 {
		ctx.Title("By subject")
		rows := make([][]string, len(subjects))
		for i, s := range subjects {
			rows[i] = []string{s.Subject, strconv.Itoa(s.Count), cli.Percent(s.Percentage), cli.Bar(s.Percentage, 100, 20)}
		}
		ctx.Println(cli.Table([]string{"Subject", "Tests", "Avg %", ""}, rows))
	}

	ctx.Title("Trend")
	for _, s := range analytics.Chronological(scored) {
		ctx.Printf("  %s  %s %s\n", s.AssessmentDate, cli.Bar(s.PercentageScore, 100, 30), cli.Percent(s.PercentageScore))
	}
	return nil
}

// PrintStats renders the overall summary and the per-domain breakdown.
func PrintStats(ctx *cli.Context, scored []analytics.ScoredMockTest) {
	s := analytics.SummarizeMockTests(scored)
	ctx.Title("Mock tests")
	ctx.Printf("  Tests taken:   %d\n", s.Count)
	ctx.Printf("  Avg score:     %s (best %s)\n", cli.Percent(s.AvgPercentage), cli.Percent(s.BestPercent))
	ctx.Printf("  Avg accuracy:  %s\n", cli.Percent(s.AvgAccuracyQ))
	ctx.Printf("  Avg time:      %s min\n", cli.Num(s.AvgTimeMin))
	ctx.Printf("  Strongest:     %s\n", s.Strongest)
	ctx.Printf("  Weakest:       %s\n", s.Weakest)

	ctx.Title("By domain")
	ctx.Println(groupTable("Domain", "Avg accuracy", analytics.MockByDomain(scored)))
}

func groupTable(key, secondary string, groups []analytics.GroupSummary) string {
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Key, strconv.Itoa(g.Count), cli.Percent(g.Mean), cli.Num(g.SecondaryMean), cli.Bar(g.Mean, 100, 20)}
	}
	return cli.Table([]string{key, "Tests", "Avg %", secondary, ""}, rows)
}

type MockPredictCmd struct{}

func (c *MockPredictCmd) Run(ctx *cli.Context) error {
	results, err := ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
	if err != nil {
		return err
	}
	history := predict.HistoryFromMockTests(analytics.ScoreMockTests(results))
	var scenarios []predict.Scenario
	if len(results) > 0 {
		scenarios = predict.DefaultScenarios(results[0])
	}

	got, err := predict.NewForest().Predict(history, scenarios)
	if stderrors.Is(err, predict.ErrInsufficientHistory) {
		ctx.Warn("Log at least %d mock tests before predicting (have %d).", constants.MinPredictionHistory, len(history))
		return nil
	}
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	ctx.Title("Expected percentage score")
	for i, sc := range scenarios {
		ctx.Printf("  %-16s %3.0f min, %-9s %s\n", sc.Label+":", sc.TimeTakenMin,
			models.DifficultyFromLevel(sc.Difficulty), cli.Percent(got[i]))
	}
	ctx.Println(cli.MutedStyle.Render("Predictions are estimates from your own history; real results will vary."))
	return nil
}

type MockImportCmd struct {
	File string `arg:"" help:"CSV file previously written by 'export mock', edited." type:"existingfile"`
	Yes  bool   `short:"y" help:"Apply without confirmation."`
}

func (c *MockImportCmd) Run(ctx *cli.Context) error {
	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", c.File, err)
	}
	defer f.Close()

	edited, err := export.ReadMockTests(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.File, err)
	}
	current, err := ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
	if err != nil {
		return err
	}

	batch := storage.DiffMockTests(current, edited)
	if batch.Empty() {
		ctx.Println("No changes.")
		return nil
	}
	added, updated, deleted := batch.Counts()
	for _, ch := range batch.Changes {
		switch ch.Kind {
		case storage.ChangeUpdated:
			for _, fc := range ch.Fields {
				ctx.Printf("  ~ %s %s: %v -> %v\n", shortID(ch.ID), fc.Field, fc.Before, fc.After)
			}
		case storage.ChangeAdded:
			ctx.Printf("  + %s on %s\n", ch.Record.TestName, ch.Record.AssessmentDate)
		case storage.ChangeDeleted:
			ctx.Printf("  - %s %s on %s\n", shortID(ch.ID), ch.Record.TestName, ch.Record.AssessmentDate)
		}
	}
	ok, err := ctx.Confirmed(c.Yes, "Apply changes?",
		fmt.Sprintf("%d added, %d updated, %d deleted", added, updated, deleted))
	if err != nil || !ok {
		return err
	}

	ctx.PerformAutomaticBackup()
	res := ctx.Mocks.ApplyBatch(batch)
	ctx.Success("%d added, %d updated, %d deleted", len(res.Added), res.Updated, res.Deleted)
	for _, fail := range res.Failures {
		ctx.Warn("%s %s: %v", fail.Change.Kind, describe(fail.Change), fail.Err)
	}
	return nil
}

func describe(ch storage.MockChange) string {
	if ch.ID != "" {
		return shortID(ch.ID)
	}
	return ch.Record.TestName
}

type MockDomainsCmd struct{}

func (c *MockDomainsCmd) Run(ctx *cli.Context) error {
	for i, d := range constants.KnowledgeDomains {
		ctx.Printf("%3d  %s\n", i+1, d)
	}
	return nil
}

package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vkarasev/tube-snap/app/database"
)

const dateFormat = "2006-01-02"

func NewHandler(runner PipelineRunner, repo database.SnapshotRepository) *Handler {
	return &Handler{
		runner: runner,
		repo:   repo,
	}
}

// RunSnapshot triggers one pipeline run. The snapshot date is fixed here,
// once, so a run straddling midnight still writes a single partition. The
// run executes synchronously; the scheduler's own timeout bounds it.
func (h *Handler) RunSnapshot(c *gin.Context) {
	runID := c.GetHeader("X-Run-ID")
	if runID == "" {
		runID = uuid.NewString()
	}

	snapshotDate := time.Now().In(time.Local)

	slog.Info("Pipeline run triggered", "run_id", runID, "snapshot_date", snapshotDate.Format(dateFormat))

	summary, err := h.runner.Run(c.Request.Context(), runID, snapshotDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RunBackfill re-collects metrics for a historical date range given as
// start/end query parameters (inclusive, YYYY-MM-DD).
func (h *Handler) RunBackfill(c *gin.Context) {
	start, err := time.Parse(dateFormat, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing start date, expected YYYY-MM-DD"})
		return
	}

	end, err := time.Parse(dateFormat, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or missing end date, expected YYYY-MM-DD"})
		return
	}

	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start date is after end date"})
		return
	}

	runID := c.GetHeader("X-Run-ID")
	if runID == "" {
		runID = uuid.NewString()
	}

	slog.Info("Backfill triggered", "run_id", runID, "start", c.Query("start"), "end", c.Query("end"))

	summary, err := h.runner.Backfill(c.Request.Context(), runID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, summary)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if counts, err := h.repo.RowCounts(c.Request.Context()); err == nil {
		health["row_counts"] = counts
	}

	c.JSON(http.StatusOK, health)
}

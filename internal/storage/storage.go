// Package storage holds verification batches in memory. Nothing is persisted;
// a batch lives only as long as the process.
package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/readornot/readornot/internal/models"
	"github.com/readornot/readornot/internal/spreadsheet"
)

// maxAnalysesPerBatch caps how many review analyses one result set may
// request. Reservations are never released; the cap holds for the lifetime of
// the batch.
const maxAnalysesPerBatch = 5

var (
	ErrBatchNotFound     = errors.New("batch not found")
	ErrResultNotFound    = errors.New("result not found")
	ErrAnalysisCapped    = errors.New("분석 요청 한도에 도달했습니다.")
	ErrNotVerified       = errors.New("검증된 도서만 분석할 수 있습니다.")
	ErrNoDescription     = errors.New("책 소개가 없어 분석할 수 없습니다.")
	ErrAlreadyAnalyzed   = errors.New("이미 분석된 감상문입니다.")
	ErrMappingUnexpected = errors.New("batch has no pending table to map")
)

// Batch is one uploaded spreadsheet and everything derived from it
type Batch struct {
	ID        string                  `json:"id"`
	Filename  string                  `json:"filename"`
	Table     *spreadsheet.Table      `json:"-"`
	Reports   []models.BookReport     `json:"reports"`
	RowErrors []string                `json:"rowErrors,omitempty"`
	Results   []models.AnalysisResult `json:"results"`
	Progress  models.Progress         `json:"progress"`
	CreatedAt time.Time               `json:"created_at"`

	analysisCount int
}

// BatchStore is an in-memory, mutex-guarded store of verification batches
type BatchStore struct {
	batches map[string]*Batch
	mu      sync.RWMutex
}

func New() *BatchStore {
	return &BatchStore{
		batches: make(map[string]*Batch),
	}
}

// Create registers a new batch and returns it. The parsed table is retained
// so a manual column mapping can re-extract without another upload.
func (s *BatchStore) Create(filename string, table *spreadsheet.Table, reports []models.BookReport, rowErrors []string) *Batch {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := &Batch{
		ID:        uuid.NewString(),
		Filename:  filename,
		Table:     table,
		Reports:   reports,
		RowErrors: rowErrors,
		Results:   []models.AnalysisResult{},
		CreatedAt: time.Now(),
	}
	s.batches[batch.ID] = batch
	return batch
}

// Get returns a snapshot of the batch, so callers can read it without holding
// the store's lock.
func (s *BatchStore) Get(batchID string) (Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, exists := s.batches[batchID]
	if !exists {
		return Batch{}, false
	}
	return snapshot(batch), true
}

// List returns snapshots of all batches
func (s *BatchStore) List() []Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Batch, 0, len(s.batches))
	for _, batch := range s.batches {
		list = append(list, snapshot(batch))
	}
	return list
}

// Delete discards a batch and its result set
func (s *BatchStore) Delete(batchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, batchID)
}

// SetReports replaces the extracted reports after a confirmed manual mapping
// and resets any previous results.
func (s *BatchStore) SetReports(batchID string, reports []models.BookReport, rowErrors []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return ErrBatchNotFound
	}
	if batch.Table == nil {
		return ErrMappingUnexpected
	}
	batch.Reports = reports
	batch.RowErrors = rowErrors
	batch.Results = []models.AnalysisResult{}
	batch.Progress = models.Progress{}
	batch.analysisCount = 0
	return nil
}

// ResetResults clears the result list before a verification run
func (s *BatchStore) ResetResults(batchID string, total int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return ErrBatchNotFound
	}
	batch.Results = []models.AnalysisResult{}
	batch.Progress = models.Progress{Completed: 0, Total: total}
	batch.analysisCount = 0
	return nil
}

// AppendResult adds one verification outcome to the batch's result list
func (s *BatchStore) AppendResult(batchID string, result models.AnalysisResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return ErrBatchNotFound
	}
	batch.Results = append(batch.Results, result)
	return nil
}

// SetProgress updates the batch's progress counter
func (s *BatchStore) SetProgress(batchID string, progress models.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return ErrBatchNotFound
	}
	batch.Progress = progress
	return nil
}

// ReserveAnalysis checks that the result at index may be analyzed and claims
// one slot of the batch's analysis budget. The claim is not returned on
// failure of the subsequent AI call.
func (s *BatchStore) ReserveAnalysis(batchID string, index int) (models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return models.AnalysisResult{}, ErrBatchNotFound
	}
	if index < 0 || index >= len(batch.Results) {
		return models.AnalysisResult{}, ErrResultNotFound
	}

	result := batch.Results[index]
	if result.Status != models.StatusVerified {
		return models.AnalysisResult{}, ErrNotVerified
	}
	if result.Verification.Description == "" {
		return models.AnalysisResult{}, ErrNoDescription
	}
	if result.ReviewAnalysis != nil {
		return models.AnalysisResult{}, ErrAlreadyAnalyzed
	}
	if batch.analysisCount >= maxAnalysesPerBatch {
		return models.AnalysisResult{}, ErrAnalysisCapped
	}

	batch.analysisCount++
	return result, nil
}

// SetAnalysis attaches a review analysis to the result at index
func (s *BatchStore) SetAnalysis(batchID string, index int, analysis models.ReviewAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch, exists := s.batches[batchID]
	if !exists {
		return ErrBatchNotFound
	}
	if index < 0 || index >= len(batch.Results) {
		return ErrResultNotFound
	}
	batch.Results[index].ReviewAnalysis = &analysis
	return nil
}

func snapshot(batch *Batch) Batch {
	copied := *batch
	copied.Reports = append([]models.BookReport{}, batch.Reports...)
	copied.RowErrors = append([]string{}, batch.RowErrors...)
	copied.Results = append([]models.AnalysisResult{}, batch.Results...)
	return copied
}

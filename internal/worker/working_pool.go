package worker

import (
	"context"
	"log"
	"sync"
)

type WorkingPool struct {
	NumWorkers int
	jobChan    chan Job

	mu     sync.RWMutex
	closed bool
}

func NewWorkingPool(numWorkers int, queueSize int) *WorkingPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkingPool{
		NumWorkers: numWorkers,
		jobChan:    make(chan Job, queueSize),
	}
}

// SubmitJob blocks until the job is queued. It returns false once the pool
// has shut down.
func (p *WorkingPool) SubmitJob(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	p.jobChan <- job
	return true
}

// TrySubmitJob queues the job only if there is room, so request paths never
// wait on a saturated pool.
func (p *WorkingPool) TrySubmitJob(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.jobChan <- job:
		return true
	default:
		return false
	}
}

func (p *WorkingPool) Start(ctx context.Context, managerWg *sync.WaitGroup) {
	defer managerWg.Done()

	var workerWg sync.WaitGroup

	for i := range p.NumWorkers {
		workerWg.Add(1)
		go p.worker(ctx, &workerWg, i+1)
	}

	<-ctx.Done()

	log.Println("[WorkingPool] Shutdown signaled. Closing job channel.")
	p.mu.Lock()
	p.closed = true
	close(p.jobChan)
	p.mu.Unlock()

	workerWg.Wait()
	log.Println("[WorkingPool] All workers stopped.")
}

func (p *WorkingPool) worker(ctx context.Context, wg *sync.WaitGroup, id int) {
	defer wg.Done()
	log.Printf("[WorkingPool-Worker %d] Started and waiting for jobs.\n", id)

	for {
		select {
		case job, ok := <-p.jobChan:
			if !ok {
				log.Printf("[WorkingPool-Worker %d] Job channel closed. Exiting.\n", id)
				return
			}
			p.safeExecution(job, id, ctx)

		case <-ctx.Done():
			p.drain(id)
			return
		}
	}
}

// drain runs whatever is still queued with a fresh context so events accepted
// before shutdown are not silently dropped.
func (p *WorkingPool) drain(id int) {
	for job := range p.jobChan {
		p.safeExecution(job, id, context.Background())
	}
	log.Printf("[WorkingPool-Worker %d] Drained queue. Exiting.\n", id)
}

func (p *WorkingPool) safeExecution(job Job, workerID int, ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WorkingPool-Worker %d] FATAL: Panic recovered in job: %v\n", workerID, r)
		}
	}()

	err = job(ctx)
	if err != nil {
		log.Printf("[WorkingPool-Worker %d] Error executing job: %s.\n", workerID, err)
	}
	return err
}

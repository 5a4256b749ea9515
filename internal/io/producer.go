package io

import (
	"sync"
)

type Producer interface {
	Produce(work chan *WorkUnit, errChan chan error, wg *sync.WaitGroup)
}

type Consumer interface {
	Consume(work chan *WorkUnit, results chan *ResultUnit, wg *sync.WaitGroup)
}

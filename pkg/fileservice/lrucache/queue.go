// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lrucache

import "sync"

// Queue is a FIFO queue made of fixed size parts, parts are recycled
// through a pool. Not thread safe, the owning cache holds the lock.
type Queue[T any] struct {
	head     *queuePart[T]
	tail     *queuePart[T]
	partPool sync.Pool
	size     int
}

type queuePart[T any] struct {
	values []T
	next   *queuePart[T]
}

const maxQueuePartCapacity = 256

func NewQueue[T any]() *Queue[T] {
	queue := &Queue[T]{
		partPool: sync.Pool{
			New: func() any {
				return &queuePart[T]{
					values: make([]T, 0, maxQueuePartCapacity),
				}
			},
		},
	}
	part := queue.partPool.Get().(*queuePart[T])
	queue.head = part
	queue.tail = part
	return queue
}

func (p *Queue[T]) empty() bool {
	return p.head == p.tail && len(p.head.values) == 0
}

func (p *queuePart[T]) reset() {
	p.values = p.values[:0]
	p.next = nil
}

func (p *Queue[T]) enqueue(v T) {
	if len(p.head.values) >= maxQueuePartCapacity {
		// extend
		newPart := p.partPool.Get().(*queuePart[T])
		newPart.reset()
		p.head.next = newPart
		p.head = newPart
	}
	p.head.values = append(p.head.values, v)
	p.size++
}

func (p *Queue[T]) dequeue() (ret T, ok bool) {
	if p.empty() {
		return
	}
	if len(p.tail.values) == 0 {
		// shrink
		part := p.tail
		p.tail = p.tail.next
		p.partPool.Put(part)
	}
	var zero T
	ret = p.tail.values[0]
	p.tail.values[0] = zero
	p.tail.values = p.tail.values[1:]
	p.size--
	ok = true
	return
}

func (p *Queue[T]) Len() int {
	return p.size
}

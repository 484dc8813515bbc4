package store

import (
	"github.com/gridsim/simnode/src/common"
	"github.com/gridsim/simnode/src/message"
)

// InmemStore keeps a bounded window of recent results in memory. Epochs are
// expected to arrive in increasing order; a gap in the sequence resets the
// window, since the rolling cache assumes consecutive indexes.
type InmemStore struct {
	cacheSize   int
	resultCache *common.RollingIndex
	lastEpoch   int
}

// NewInmemStore ...
func NewInmemStore(cacheSize int) *InmemStore {
	return &InmemStore{
		cacheSize:   cacheSize,
		resultCache: common.NewRollingIndex("ResultCache", cacheSize),
		lastEpoch:   -1,
	}
}

// CacheSize ...
func (s *InmemStore) CacheSize() int {
	return s.cacheSize
}

// SetResult ...
func (s *InmemStore) SetResult(result *message.ResultMessage) error {
	err := s.resultCache.Set(result, result.Epoch)
	if err != nil {
		if !common.IsStore(err, common.SkippedIndex) {
			return err
		}
		//the simulation skipped epochs; restart the window at this epoch
		s.resultCache = common.NewRollingIndex("ResultCache", s.cacheSize)
		if err := s.resultCache.Set(result, result.Epoch); err != nil {
			return err
		}
	}
	if result.Epoch > s.lastEpoch {
		s.lastEpoch = result.Epoch
	}
	return nil
}

// GetResult ...
func (s *InmemStore) GetResult(epoch int) (*message.ResultMessage, error) {
	item, err := s.resultCache.GetItem(epoch)
	if err != nil {
		return nil, err
	}
	return item.(*message.ResultMessage), nil
}

// LastEpoch ...
func (s *InmemStore) LastEpoch() int {
	return s.lastEpoch
}

// Close ...
func (s *InmemStore) Close() error {
	return nil
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher 监听存储文件被其他进程修改
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	once    sync.Once
}

// Watch 监听 key 的值变化，fn 在监听 goroutine 上调用
//
// 写入是临时文件 + rename，所以监听的是所在目录而不是文件本身。
// 值没有变化的写入不会触发 fn。
func (s *FileKV) Watch(key string, fn func(value string)) (*Watcher, error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监听失败: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("监听目录失败 %s: %w", dir, err)
	}

	last, _, _ := s.Get(key)
	w := &Watcher{watcher: fw, done: make(chan struct{})}
	target := filepath.Clean(s.path)

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				value, found, err := s.Get(key)
				if err != nil || !found || value == last {
					continue
				}
				last = value
				fn(value)
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return w, nil
}

// Close 停止监听并等待监听 goroutine 退出，可重复调用
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

package uistate

import "github.com/Zacy-Sokach/RagChat/internal/chat"

// Reduce 唯一的状态更新函数
//
// 纯函数：相同的输入总是得到相同的状态和副作用序列，副作用由 Sync 执行。
func Reduce(s State, e Event) (State, []Effect) {
	switch e := e.(type) {
	case MessageAppended:
		s.Messages = e.Count
		return s, []Effect{ScrollToLatest{}}

	case RequestChanged:
		from := s.Request
		s.Request = e.To
		effects := []Effect{ScrollToLatest{}}
		// 新请求被接受时撤下旧的错误提示
		if from == chat.Idle && e.To == chat.InFlight && s.Banner != nil {
			s.Banner = nil
			effects = append(effects, CancelBannerTimer{}, ClearBanner{})
		}
		return s, effects

	case DraftChanged:
		s.Draft = e.Draft
		s.InputHeight = InputHeight(s.Draft, s.InputWidth)
		return s, []Effect{ResizeInput{Height: s.InputHeight}}

	case InputResized:
		s.InputWidth = e.Width
		s.InputHeight = InputHeight(s.Draft, s.InputWidth)
		return s, []Effect{ResizeInput{Height: s.InputHeight}}

	case ThemeToggled:
		s.Theme = s.Theme.Toggle()
		return s, []Effect{PersistTheme{Theme: s.Theme}, ApplyTheme{Theme: s.Theme}}

	case ThemeSet:
		if e.Theme == s.Theme {
			return s, []Effect{ApplyTheme{Theme: s.Theme}}
		}
		s.Theme = e.Theme
		return s, []Effect{PersistTheme{Theme: s.Theme}, ApplyTheme{Theme: s.Theme}}

	case ErrorRaised:
		s.bannerSeq++
		banner := TransientError{
			Message:   e.Detail,
			CreatedAt: e.At,
			ExpiresAt: e.At.Add(BannerDelay),
			Seq:       s.bannerSeq,
		}
		s.Banner = &banner
		return s, []Effect{
			CancelBannerTimer{},
			ShowBanner{Banner: banner},
			ScheduleBannerExpiry{Seq: banner.Seq, After: BannerDelay},
		}

	case BannerExpired:
		if s.Banner == nil || s.Banner.Seq != e.Seq {
			return s, nil
		}
		s.Banner = nil
		return s, []Effect{ClearBanner{}}
	}

	return s, nil
}

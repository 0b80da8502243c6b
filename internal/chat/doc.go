// Package chat 实现单用户问答会话的核心状态：
// 只追加的消息历史 (Store)、单飞请求控制 (Controller) 和输入草稿 (Composer)。
//
// 所有会话状态只由 Controller 修改。Store 和 Controller 的变化通过同步回调
// 通知订阅者，界面层据此刷新滚动位置、横幅等表现状态。
package chat

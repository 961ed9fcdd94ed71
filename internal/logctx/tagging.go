package logctx

import (
	"context"
	"tailf/internal/global"
)

// Tag lists are immutable once attached: every mutation attaches a fresh
// copy, so sibling contexts never share backing storage.

// Append one or more tags to the context's tag list, broad to specific
func AppendCtxTag(ctx context.Context, newTags ...string) (newCtx context.Context) {
	old := GetTagList(ctx)

	tags := make([]string, 0, len(old)+len(newTags))
	tags = append(tags, old...)
	tags = append(tags, newTags...)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Drop the most specific tag from the context's tag list
func RemoveLastCtxTag(ctx context.Context) (newCtx context.Context) {
	old := GetTagList(ctx)
	if len(old) == 0 {
		// Nothing to pop
		newCtx = ctx
		return
	}

	tags := make([]string, len(old)-1)
	copy(tags, old[:len(old)-1])

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Replace the tag list wholesale. Worker goroutines use this to adopt the
// namespace of the component that owns them.
func OverwriteCtxTag(ctx context.Context, newList []string) (newCtx context.Context) {
	tags := append([]string(nil), newList...)
	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Tag list attached to the context, or empty
func GetTagList(ctx context.Context) (tags []string) {
	tags, validAssert := ctx.Value(global.LogTagsKey).([]string)
	if !validAssert {
		tags = []string{}
	}
	return
}

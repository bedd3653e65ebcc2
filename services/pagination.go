package services

// normalizePage đưa page về 1-based và pageSize về mặc định khi không hợp lệ
func normalizePage(page, pageSize, defaultSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	return page, pageSize
}

func pageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// hasNextPage so sánh tổng số bản ghi khớp với offset + số bản ghi đã trả về
func hasNextPage(total int64, offset, returned int) bool {
	return total > int64(offset+returned)
}

package vectorindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cinematch-go/pkg/tfidf"
)

// 三个并置的索引产物文件。必须一起加载、一起替换。
const (
	recordsFile    = "movies.json"
	modelFile      = "tfidf.json"
	similarityFile = "similarity.json"
)

// recordsArtifact 是 movies.json 的内容。
type recordsArtifact struct {
	BuiltAt time.Time `json:"built_at"`
	Records []Record  `json:"records"`
}

// similarityArtifact 是 similarity.json 的内容。
// JSON 数字采用 Go 的最短往返表示，相似度得分可精确往返，不做有损压缩。
type similarityArtifact struct {
	Matrix [][]float64 `json:"matrix"`
}

// Save 将索引的三个产物原子地写入 dir。
// 写入流程：先写到 dir.tmp，全部成功后用重命名整体替换旧目录。
// 任何一步失败都不会留下半新半旧的索引（旧索引保持完好）。
func (idx *VectorIndex) Save(dir string) error {
	if err := idx.Validate(); err != nil {
		return err
	}

	tmpDir := dir + ".tmp"
	if err := os.RemoveAll(tmpDir); err != nil {
		return fmt.Errorf("清理临时索引目录失败: %w", err)
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return fmt.Errorf("创建临时索引目录失败: %w", err)
	}

	if err := writeJSON(filepath.Join(tmpDir, recordsFile), recordsArtifact{BuiltAt: idx.BuiltAt, Records: idx.Records}); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmpDir, modelFile), idx.Model); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(tmpDir, similarityFile), similarityArtifact{Matrix: idx.Sim}); err != nil {
		return err
	}

	// rebuild-then-swap：旧目录先挪开再换入新目录
	oldDir := dir + ".old"
	if err := os.RemoveAll(oldDir); err != nil {
		return fmt.Errorf("清理旧索引目录失败: %w", err)
	}
	if _, err := os.Stat(dir); err == nil {
		if err := os.Rename(dir, oldDir); err != nil {
			return fmt.Errorf("移出旧索引目录失败: %w", err)
		}
	}
	if err := os.Rename(tmpDir, dir); err != nil {
		return fmt.Errorf("换入新索引目录失败: %w", err)
	}
	_ = os.RemoveAll(oldDir)
	return nil
}

// Load 从 dir 加载三个产物并校验一致性。
// 任一文件缺失或行数失配都返回错误，绝不返回部分可用的索引。
func Load(dir string) (*VectorIndex, error) {
	var recArt recordsArtifact
	if err := readJSON(filepath.Join(dir, recordsFile), &recArt); err != nil {
		return nil, err
	}

	var m tfidf.Model
	if err := readJSON(filepath.Join(dir, modelFile), &m); err != nil {
		return nil, err
	}

	var simArt similarityArtifact
	if err := readJSON(filepath.Join(dir, similarityFile), &simArt); err != nil {
		return nil, err
	}

	idx := &VectorIndex{
		Records: recArt.Records,
		Model:   &m,
		Sim:     simArt.Matrix,
		BuiltAt: recArt.BuiltAt,
	}
	if err := idx.Validate(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Exists 判断 dir 下是否存在一套完整的索引产物。
func Exists(dir string) bool {
	for _, name := range []string{recordsFile, modelFile, similarityFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return false
		}
	}
	return true
}

// ArtifactFiles 返回索引目录下的三个产物文件名。
func ArtifactFiles() []string {
	return []string{recordsFile, modelFile, similarityFile}
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("序列化索引产物 %s 失败: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入索引产物 %s 失败: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取索引产物 %s 失败: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("解析索引产物 %s 失败: %w", filepath.Base(path), err)
	}
	return nil
}

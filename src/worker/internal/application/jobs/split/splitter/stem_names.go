package splitter

import (
	"github.com/voxsplit/voxsplit-be/src/shared/job/entity"
	"github.com/voxsplit/voxsplit-be/src/worker/internal/lib/cerr"
	"path/filepath"
)

// Engines disagree on what to call the non-vocal stem. demucs writes
// no_vocals in two-stem mode where spleeter writes accompaniment.
var stemNameAliases = map[string]string{
	"vocals":        jobentity.VocalsStem,
	"accompaniment": jobentity.AccompanimentStem,
	"no_vocals":     jobentity.AccompanimentStem,
}

// canonicalStemFiles maps engine stem names onto the service's canonical pair
// and pins down the single directory the engine wrote its files into. Anything
// other than exactly {vocals, accompaniment} is an engine contract breach.
func canonicalStemFiles(enginePaths StemFilePaths) (map[string]string, string, error) {
	if len(enginePaths) == 0 {
		return nil, "", cerr.Error("The engine produced no stems")
	}

	canonical := map[string]string{}
	engineDir := ""

	for engineStem, filePath := range enginePaths {
		canonicalName, ok := stemNameAliases[engineStem]
		if !ok {
			return nil, "", cerr.Field("stem_name", engineStem).
				Error("The engine produced an unrecognized stem")
		}

		if _, exists := canonical[canonicalName]; exists {
			return nil, "", cerr.Field("stem_name", engineStem).
				Error("The engine produced more than one file for the same stem")
		}

		canonical[canonicalName] = filepath.Base(filePath)

		dir := filepath.Dir(filePath)
		if engineDir == "" {
			engineDir = dir
		} else if engineDir != dir {
			return nil, "", cerr.Fields(cerr.F{
				"first_dir": engineDir,
				"other_dir": dir,
			}).Error("The engine scattered stems across directories")
		}
	}

	if _, ok := canonical[jobentity.VocalsStem]; !ok {
		return nil, "", cerr.Error("The engine did not produce a vocals stem")
	}

	if _, ok := canonical[jobentity.AccompanimentStem]; !ok {
		return nil, "", cerr.Error("The engine did not produce an accompaniment stem")
	}

	return canonical, engineDir, nil
}
